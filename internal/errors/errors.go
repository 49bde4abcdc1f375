// LOCATION: internal/errors/errors.go
//
// This file provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error wrapping utilities
//
// Two steady-state conditions are deliberately NOT errors and have no
// sentinel here: an empty socket queue (the endpoint returns nil bytes and a
// nil error) and a wrong-length datagram (the decoder returns ok=false).
// Both are expected outcomes of normal polling, not failures.

package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// Startup errors - fatal, the process must not continue half-initialized.

	// ErrResourceConflict means a filesystem object already occupies the bind
	// path and could not be removed. Usually a crashed prior instance or a
	// permission problem.
	ErrResourceConflict = errors.New("bind path conflict")

	// ErrBindFailure means the datagram socket could not be created or bound.
	ErrBindFailure = errors.New("bind failed")

	// ErrInvalidConfig marks configuration validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Steady-state errors - absorbed locally, never fatal.

	// ErrReceive marks an OS-level receive failure other than an empty queue.
	// The sampler logs it and keeps polling.
	ErrReceive = errors.New("receive error")

	// ErrClosed is returned by operations on a closed endpoint or emitter.
	ErrClosed = errors.New("closed")

	// Probe errors.

	// ErrNoStation means no station matched on the WiFi interface (not
	// associated, or the requested peer is gone).
	ErrNoStation = errors.New("no matching station")

	// ErrSend marks a datagram send failure (consumer absent or restarted).
	// The probe logs it and keeps its heartbeat.
	ErrSend = errors.New("send error")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// IsStartupFatal returns true if err must abort startup.
// Only resource and configuration failures at open time qualify; everything
// hit during steady-state polling is absorbed so the display keeps running.
func IsStartupFatal(err error) bool {
	return errors.Is(err, ErrResourceConflict) ||
		errors.Is(err, ErrBindFailure) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsTransient returns true if err is an absorbable steady-state failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrReceive) ||
		errors.Is(err, ErrSend) ||
		errors.Is(err, ErrNoStation)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewValidation creates a configuration validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors so a bad config
// reports every problem at once instead of one per run.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the first error for errors.Is/As support.
func (v *ValidationErrors) Unwrap() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}
