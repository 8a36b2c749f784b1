package ingest

import (
	"github.com/gobwas/glob"

	"github.com/fluxmap/fluxmap/internal/errors"
)

// Filter drops events whose type matches any configured glob pattern.
// A nil Filter drops nothing.
type Filter struct {
	globs    []glob.Glob
	patterns []string
}

// NewFilter compiles a list of glob patterns into a Filter.
// Returns a ValidationError for any pattern that does not compile.
func NewFilter(patterns []string) (*Filter, error) {
	if len(patterns) == 0 {
		return &Filter{}, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewValidationError("invalid ignore pattern").
				WithField("ignore_events").
				WithValue(pattern).
				WithCause(err)
		}
		globs = append(globs, g)
	}

	return &Filter{globs: globs, patterns: patterns}, nil
}

// Drop reports whether an event type should be discarded.
func (f *Filter) Drop(eventType string) bool {
	if f == nil {
		return false
	}
	for _, g := range f.globs {
		if g.Match(eventType) {
			return true
		}
	}
	return false
}

// Patterns returns the configured pattern strings.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return f.patterns
}
