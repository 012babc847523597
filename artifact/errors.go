package artifact

import "fmt"

var (
	// ErrNotFound is returned when an artifact for the given namespace / id
	// pair does not exist in the underlying store.
	ErrNotFound = fmt.Errorf("artifact not found")
	// ErrInvalidName is returned when a namespace or id cannot be mapped to a
	// single storage location.
	ErrInvalidName = fmt.Errorf("invalid artifact name")
)
