// Package errors defines the error taxonomy shared across fluxmap:
// sentinel values for matching with Is, structured errors that carry
// stream or input context, and re-exports of the standard helpers so
// call sites need a single errors import.
//
// Creating errors:
//
//	err := errors.NewIngestError("invalid JSON", errors.ErrMalformedLine).
//		WithSource("pipeline.ndjson").WithLine(42)
//
// Matching errors:
//
//	if errors.Is(err, errors.ErrMalformedLine) { ... }
//
//	var ie *errors.IngestError
//	if errors.As(err, &ie) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard library helpers, re-exported.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Sentinels matched across package boundaries.
var (
	// ErrMalformedLine marks a telemetry line that could not be decoded.
	ErrMalformedLine = New("malformed telemetry line")
	// ErrWatchFailed marks a file watch that could not be established.
	ErrWatchFailed = New("file watch failed")
	// ErrStreamClosed marks a followed stream that went away mid-run.
	ErrStreamClosed = New("telemetry stream closed")
)

// IngestError is an error reading or decoding the telemetry stream. The
// optional source name and line number locate the failure in the stream.
type IngestError struct {
	message string
	cause   error
	Source  string
	Line    int
}

// NewIngestError creates an IngestError. The line number starts unset.
func NewIngestError(message string, cause error) *IngestError {
	return &IngestError{message: message, cause: cause, Line: -1}
}

// WithSource records the stream source name.
func (e *IngestError) WithSource(source string) *IngestError {
	e.Source = source
	return e
}

// WithLine records the 1-based line number within the stream.
func (e *IngestError) WithLine(line int) *IngestError {
	e.Line = line
	return e
}

func (e *IngestError) Error() string {
	var loc []string
	if e.Source != "" {
		loc = append(loc, "source="+e.Source)
	}
	if e.Line >= 0 {
		loc = append(loc, fmt.Sprintf("line=%d", e.Line))
	}

	prefix := "ingest error"
	if len(loc) > 0 {
		prefix += " [" + strings.Join(loc, ", ") + "]"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return prefix + ": " + e.message
}

func (e *IngestError) Unwrap() error { return e.cause }

// Is matches any *IngestError, or whatever the cause matches.
func (e *IngestError) Is(target error) bool {
	if _, ok := target.(*IngestError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// ValidationError is invalid input or configuration. Field and Value
// identify the offending setting when known.
type ValidationError struct {
	message string
	cause   error
	Field   string
	Value   any
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{message: message}
}

// WithField records the configuration field or flag name.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the rejected value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause records the underlying error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var ctx []string
	if e.Field != "" {
		ctx = append(ctx, "field="+e.Field)
	}
	if e.Value != nil {
		ctx = append(ctx, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(ctx) > 0 {
		prefix += " [" + strings.Join(ctx, ", ") + "]"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return prefix + ": " + e.message
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Is matches any *ValidationError, or whatever the cause matches.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// NotFoundError names a resource that does not exist, such as a theme
// or a telemetry source.
type NotFoundError struct {
	cause error
	Kind  string
	Name  string
}

// NewNotFoundError creates a NotFoundError for the named resource.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// WithCause records the underlying error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s %q not found: %v", e.Kind, e.Name, e.cause)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.cause }

// Is matches any *NotFoundError, or whatever the cause matches.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}
