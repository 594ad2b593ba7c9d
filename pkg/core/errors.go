package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures by their operational domain.
type ErrorKind string

const (
	// ErrUnsupportedFormat: no tokenizer for the declared content kind.
	// Recoverable; the engine falls back to plain-text scanning.
	ErrUnsupportedFormat ErrorKind = "unsupported_format"

	// ErrMalformedEntry: one structural entry failed to parse and was
	// downgraded to raw-text scanning. The job continues.
	ErrMalformedEntry ErrorKind = "malformed_entry"

	// ErrDetectorFailure: a matcher panicked or failed on one unit. That
	// matcher's results for the unit are dropped; others continue.
	ErrDetectorFailure ErrorKind = "detector_failure"

	// ErrUnitTimeout: detection on one unit exceeded the configured
	// per-unit timeout. The unit is skipped and reported.
	ErrUnitTimeout ErrorKind = "unit_timeout"

	// ErrReassemblyConflict: two accepted matches overlap. This indicates
	// a resolver invariant violation and is fatal.
	ErrReassemblyConflict ErrorKind = "reassembly_conflict"

	// ErrSessionKeyMissing: a strategy requiring an external key was
	// configured without one. Fails the job before any bytes are touched.
	ErrSessionKeyMissing ErrorKind = "session_key_missing"

	// ErrInvalidConfig: policy or engine configuration is invalid.
	ErrInvalidConfig ErrorKind = "invalid_config"
)

// Recoverable reports whether a job survives this kind of failure.
func (k ErrorKind) Recoverable() bool {
	switch k {
	case ErrUnsupportedFormat, ErrMalformedEntry, ErrDetectorFailure, ErrUnitTimeout:
		return true
	}
	return false
}

// Error is the structured error type used throughout the engine. It carries
// a machine-readable kind, the component the failure originated in, and an
// optional context map for diagnostics.
type Error struct {
	Kind     ErrorKind      `json:"kind"`
	Resource string         `json:"resource"` // originating component, e.g. "tokenizer", "detector"
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
	Err      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Resource, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by kind, so callers can test against a bare kind error.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// WithContext returns a copy of the error with an added context entry.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Kind: e.Kind, Resource: e.Resource, Message: e.Message, Context: ctx, Err: e.Err}
}

// NewError creates a structured error.
func NewError(kind ErrorKind, resource, message string) *Error {
	return &Error{Kind: kind, Resource: resource, Message: message}
}

// WrapError creates a structured error wrapping a cause.
func WrapError(kind ErrorKind, resource, message string, err error) *Error {
	return &Error{Kind: kind, Resource: resource, Message: message, Err: err}
}

// KindOf extracts the error kind from err, or "" if err is not a *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
