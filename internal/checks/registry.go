package checks

import (
	"fmt"

	"github.com/andresuchdata/bizlens/internal/industry"
)

// Registry holds the available checks. It is owned by the engine that
// constructs it; new checks register here without touching the orchestrator.
type Registry struct {
	checks map[string]Check
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// NewDefaultRegistry returns a registry with the built-in checks.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewStockOutRiskCheck())
	return r
}

// Register adds a check. Re-registering a name replaces the check but keeps
// its original position, so iteration order stays stable.
func (r *Registry) Register(c Check) {
	if _, ok := r.checks[c.Name()]; !ok {
		r.order = append(r.order, c.Name())
	}
	r.checks[c.Name()] = c
}

// Get returns a check by name.
func (r *Registry) Get(name string) (Check, error) {
	c, ok := r.checks[name]
	if !ok {
		return nil, fmt.Errorf("check %q not found in registry", name)
	}
	return c, nil
}

// ListAll returns every registered check in registration order.
func (r *Registry) ListAll() []Check {
	out := make([]Check, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.checks[name])
	}
	return out
}

// Applicable returns the checks whose IsApplicable accepts the context, in
// registration order.
func (r *Registry) Applicable(ctx industry.Context) []Check {
	var out []Check
	for _, name := range r.order {
		if c := r.checks[name]; c.IsApplicable(ctx) {
			out = append(out, c)
		}
	}
	return out
}
