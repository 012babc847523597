package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

// CallbackType defines the specific lifecycle points where callbacks can be executed.
//
// Available callback types:
//   - BeforeRegister/AfterRegister: Around installing a factory
//   - BeforeDeliver/AfterDeliver: Around handing a message to a handler
//   - OnError: When a handler returns an error
//
// Callbacks are executed synchronously. Errors returned from a "before"
// callback abort the operation; errors from the others are logged.
type CallbackType string

const (
	// CallbackBeforeRegister runs before a factory is installed.
	CallbackBeforeRegister CallbackType = "before_register"

	// CallbackAfterRegister runs after a factory is installed.
	CallbackAfterRegister CallbackType = "after_register"

	// CallbackBeforeDeliver runs before a message reaches its handler.
	CallbackBeforeDeliver CallbackType = "before_deliver"

	// CallbackAfterDeliver runs after a handler replied successfully.
	CallbackAfterDeliver CallbackType = "after_deliver"

	// CallbackOnError runs when a handler returned an error.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext provides context information for callback execution.
//
// Fields not relevant to the callback type are left zero: registration
// callbacks only carry AgentType, delivery callbacks carry the address, the
// message and the event being recorded.
type CallbackContext struct {
	CallbackType CallbackType

	// AgentType is the type name being registered or addressed.
	AgentType string

	Address core.Address
	Message core.Message
	Reply   core.Message
	Event   *core.Event
	Err     error

	Metadata map[string]any
}

// Callback defines the interface for lifecycle hooks.
type Callback interface {
	// Type returns the callback type this callback handles.
	Type() CallbackType

	// Execute performs the callback logic.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback adapts a function into a Callback.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a callback from a function.
//
// Example:
//
//	callback := NewFunctionCallback(CallbackAfterRegister, func(ctx context.Context, cbCtx *CallbackContext) error {
//	    log.Printf("registered %s", cbCtx.AgentType)
//	    return nil
//	})
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager manages registration and execution of callbacks. It is
// safe for concurrent use.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback. Callbacks of the same type run in
// registration order.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs all callbacks of the given type and stops at the
// first error. A nil manager runs nothing.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return fmt.Errorf("%s callback: %w", callbackType, err)
		}
	}

	return nil
}

// LoggingCallback writes a one-line summary of each callback it receives.
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a callback that logs lifecycle events.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the callback information.
func (c *LoggingCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	switch {
	case callbackCtx.Err != nil:
		c.logger(fmt.Sprintf("[%s] %s: %v", c.callbackType, callbackCtx.Address, callbackCtx.Err))
	case !callbackCtx.Address.IsZero():
		c.logger(fmt.Sprintf("[%s] %s: %q", c.callbackType, callbackCtx.Address, callbackCtx.Message.Content))
	default:
		c.logger(fmt.Sprintf("[%s] type %s", c.callbackType, callbackCtx.AgentType))
	}
	return nil
}

// TypeValidationCallback vetoes registrations whose type name fails a check.
type TypeValidationCallback struct {
	validator func(typ string) error
}

// NewTypeValidationCallback creates a before_register callback running validator.
func NewTypeValidationCallback(validator func(typ string) error) *TypeValidationCallback {
	return &TypeValidationCallback{
		validator: validator,
	}
}

// Type returns CallbackBeforeRegister.
func (c *TypeValidationCallback) Type() CallbackType {
	return CallbackBeforeRegister
}

// Execute runs the validator against the type being registered.
func (c *TypeValidationCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	if c.validator == nil {
		return nil
	}
	return c.validator(callbackCtx.AgentType)
}
