package core

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeStopped is returned when a delivery reaches a runtime that is
	// not running.
	ErrRuntimeStopped = errors.New("runtime is not running")
	// ErrInvalidHint is returned when a creation hint does not yield a valid
	// type name.
	ErrInvalidHint = errors.New("invalid creation hint")
	// ErrChainDepthExceeded is returned when a meta-creation would nest deeper
	// than the configured bound.
	ErrChainDepthExceeded = errors.New("creator chain depth exceeded")
	// ErrSpawnLimitExceeded is returned when a single top-level request spawns
	// more agents than allowed.
	ErrSpawnLimitExceeded = errors.New("spawn limit exceeded")
	// ErrEmptyGeneration is returned when a synthesizer yields nothing usable.
	ErrEmptyGeneration = errors.New("synthesizer returned an empty specification")
)

// DuplicateTypeError reports a registration for a type name that is already
// bound.
type DuplicateTypeError struct {
	Type string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("agent type %q is already registered", e.Type)
}

// UnknownTypeError reports an address whose type has no factory.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("agent type %q is not registered", e.Type)
}

// GenerationError reports a synthesizer failure or an unusable output.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// LoadError reports specification text that cannot be turned into a
// Constructible.
type LoadError struct {
	Symbol string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s specification: %v", e.Symbol, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RegistrationError reports a failure to install a newly created type.
type RegistrationError struct {
	Type string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %q: %v", e.Type, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// DeliveryError reports a message that could not be handed to its recipient.
type DeliveryError struct {
	Address Address
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
