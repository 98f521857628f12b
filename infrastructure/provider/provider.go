// Package provider implements search.Embedder against local and remote models.
package provider

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded indicates a batch larger than the provider accepts.
var ErrCapacityExceeded = errors.New("batch exceeds provider capacity")

// ProviderError wraps a failure from an embedding backend with the operation
// and HTTP status that produced it.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	err        error
}

// NewProviderError creates a ProviderError.
func NewProviderError(operation string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		err:        err,
	}
}

// Operation returns the failed operation name.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status, or 0 when none applies.
func (e *ProviderError) StatusCode() int { return e.statusCode }

func (e *ProviderError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("%s failed: %s", e.operation, e.message)
}

func (e *ProviderError) Unwrap() error { return e.err }
