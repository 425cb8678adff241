// Package industry provides the business context consumed by analyst checks:
// named thresholds, business norms and the expected input schema for an
// industry. A context is immutable for the lifetime of an analysis run.
package industry

import (
	"fmt"

	"github.com/andresuchdata/bizlens/internal/dataset"
)

// Context exposes industry-specific thresholds, norms and schema
// expectations. Implementations must be safe for concurrent reads and must
// never mutate after construction.
type Context interface {
	// Industry returns the industry key, e.g. "retail".
	Industry() string

	// Threshold returns a named numeric threshold. Missing thresholds fail
	// with a ContextError; callers decide whether to fall back to a default.
	Threshold(name string) (float64, error)

	// Norm returns a named business norm.
	Norm(name string) (float64, error)

	// RequiredColumns returns the columns a legacy-format snapshot must carry.
	RequiredColumns() []string

	// ColumnTypes returns the declared types for legacy-format columns.
	ColumnTypes() map[string]dataset.ColumnType
}

// ContextError reports an unsupported industry or a failed threshold/norm
// lookup.
type ContextError struct {
	Reason string
}

func (e *ContextError) Error() string {
	return "business context: " + e.Reason
}

func contextErrorf(format string, args ...any) error {
	return &ContextError{Reason: fmt.Sprintf(format, args...)}
}

// ThresholdOr returns the named threshold, or def when the context does not
// define it. Lookup failures other than absence do not occur.
func ThresholdOr(ctx Context, name string, def float64) float64 {
	v, err := ctx.Threshold(name)
	if err != nil {
		return def
	}
	return v
}

// NormOr returns the named norm, or def when the context does not define it.
func NormOr(ctx Context, name string, def float64) float64 {
	v, err := ctx.Norm(name)
	if err != nil {
		return def
	}
	return v
}
