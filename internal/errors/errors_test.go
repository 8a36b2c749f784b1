package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIngestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *IngestError
		want string
	}{
		{
			name: "bare",
			err:  NewIngestError("invalid JSON", nil),
			want: "ingest error: invalid JSON",
		},
		{
			name: "with cause",
			err:  NewIngestError("invalid JSON", ErrMalformedLine),
			want: "ingest error: invalid JSON: malformed telemetry line",
		},
		{
			name: "with source",
			err:  NewIngestError("opening source", nil).WithSource("pipeline.ndjson"),
			want: "ingest error [source=pipeline.ndjson]: opening source",
		},
		{
			name: "with source and line",
			err:  NewIngestError("invalid JSON", nil).WithSource("pipeline.ndjson").WithLine(42),
			want: "ingest error [source=pipeline.ndjson, line=42]: invalid JSON",
		},
		{
			name: "line zero is a location",
			err:  NewIngestError("invalid JSON", nil).WithLine(0),
			want: "ingest error [line=0]: invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIngestError_Matching(t *testing.T) {
	err := NewIngestError("invalid JSON", Join(ErrMalformedLine, errors.New("unexpected eof")))

	if !Is(err, ErrMalformedLine) {
		t.Error("Is(err, ErrMalformedLine) = false, want true")
	}
	if Is(err, ErrWatchFailed) {
		t.Error("Is(err, ErrWatchFailed) = true, want false")
	}

	wrapped := fmt.Errorf("drain: %w", err)
	var ie *IngestError
	if !As(wrapped, &ie) {
		t.Fatal("As failed to recover *IngestError through a wrap")
	}
	if ie.Line != -1 {
		t.Errorf("Line = %d, want -1 for unset", ie.Line)
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "bare",
			err:  NewValidationError("history depth must be positive"),
			want: "validation error: history depth must be positive",
		},
		{
			name: "with field and value",
			err: NewValidationError("invalid ignore pattern").
				WithField("ignore_events").WithValue("worker_["),
			want: "validation error [field=ignore_events, value=worker_[]: invalid ignore pattern",
		},
		{
			name: "with cause",
			err: NewValidationError("invalid ignore pattern").
				WithCause(errors.New("unclosed bracket")),
			want: "validation error: invalid ignore pattern: unclosed bracket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Matching(t *testing.T) {
	cause := errors.New("unclosed bracket")
	err := NewValidationError("invalid ignore pattern").WithCause(cause)

	if !Is(err, cause) {
		t.Error("Is did not match the recorded cause")
	}

	var ve *ValidationError
	if !As(fmt.Errorf("flags: %w", err), &ve) {
		t.Fatal("As failed to recover *ValidationError")
	}
	if ve.Field != "" {
		t.Errorf("Field = %q, want empty", ve.Field)
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("theme", "solarized")
	if got, want := err.Error(), `theme "solarized" not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("theme dir unreadable")
	err = err.WithCause(cause)
	if !Is(err, cause) {
		t.Error("Is did not match the recorded cause")
	}

	var nf *NotFoundError
	if !As(fmt.Errorf("startup: %w", err), &nf) {
		t.Fatal("As failed to recover *NotFoundError")
	}
	if nf.Kind != "theme" || nf.Name != "solarized" {
		t.Errorf("recovered %s %q, want theme solarized", nf.Kind, nf.Name)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrMalformedLine, ErrWatchFailed, ErrStreamClosed}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if (i == j) != Is(a, b) {
				t.Errorf("Is(%v, %v) = %v", a, b, i == j)
			}
		}
	}
}
