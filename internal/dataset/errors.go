package dataset

import "fmt"

// ValidationError reports malformed or missing input data. It is fatal: the
// engine aborts the run instead of producing a partial feature bundle.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "data validation: " + e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
