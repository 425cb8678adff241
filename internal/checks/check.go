// Package checks holds the analyst checks that turn a feature bundle into
// insights, and the registry the engine discovers them through.
package checks

import (
	"fmt"

	"github.com/andresuchdata/bizlens/internal/domain"
	"github.com/andresuchdata/bizlens/internal/features"
	"github.com/andresuchdata/bizlens/internal/industry"
)

// Check is one analyst capability. Execute either returns insights or a
// structured failure; it must not panic and must not mutate the bundle or
// the context.
type Check interface {
	// Name returns the unique check identifier.
	Name() string

	// Description says what the check looks for.
	Description() string

	// IsApplicable reports whether the check makes sense for the industry.
	IsApplicable(ctx industry.Context) bool

	// Execute runs the check against an extracted feature bundle.
	Execute(bundle *features.Bundle, ctx industry.Context) ([]domain.Insight, error)
}

// ExecutionError wraps a single check's internal failure. The engine catches
// it, records a diagnostic, and keeps running the remaining checks.
type ExecutionError struct {
	Check string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("check %q failed: %v", e.Check, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
