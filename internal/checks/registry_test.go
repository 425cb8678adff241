package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizlens/internal/domain"
	"github.com/andresuchdata/bizlens/internal/features"
	"github.com/andresuchdata/bizlens/internal/industry"
)

type stubCheck struct {
	name       string
	applicable bool
}

func (s *stubCheck) Name() string        { return s.name }
func (s *stubCheck) Description() string { return "stub" }
func (s *stubCheck) IsApplicable(ctx industry.Context) bool {
	return s.applicable
}
func (s *stubCheck) Execute(bundle *features.Bundle, ctx industry.Context) ([]domain.Insight, error) {
	return nil, nil
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCheck{name: "b", applicable: true})
	r.Register(&stubCheck{name: "a", applicable: true})
	r.Register(&stubCheck{name: "c", applicable: false})

	var names []string
	for _, c := range r.ListAll() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)

	names = nil
	for _, c := range r.Applicable(industry.NewRetailContext()) {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"b", "a"}, names)
}

func TestRegistryReRegisterKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCheck{name: "first"})
	r.Register(&stubCheck{name: "second"})
	r.Register(&stubCheck{name: "first", applicable: true})

	all := r.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Name())
	assert.True(t, all[0].IsApplicable(industry.NewRetailContext()))
}

func TestRegistryGet(t *testing.T) {
	r := NewDefaultRegistry()

	c, err := r.Get("stockout_risk")
	require.NoError(t, err)
	assert.Equal(t, "stockout_risk", c.Name())

	_, err = r.Get("nope")
	assert.ErrorContains(t, err, `check "nope" not found`)
}
