package industry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetailContextThresholds(t *testing.T) {
	ctx := NewRetailContext()

	tests := []struct {
		name string
		want float64
	}{
		{name: "critical_days_of_stock", want: 7},
		{name: "medium_days_of_stock", want: 14},
		{name: "top_seller_revenue_percentile", want: 0.3},
		{name: "sales_lookback_days", want: 30},
		{name: "min_sales_days_required", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctx.Threshold(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetailContextMissingLookups(t *testing.T) {
	ctx := NewRetailContext()

	_, err := ctx.Threshold("nonexistent")
	var cerr *ContextError
	require.ErrorAs(t, err, &cerr)

	_, err = ctx.Norm("nonexistent")
	require.ErrorAs(t, err, &cerr)
}

func TestFallbackHelpers(t *testing.T) {
	ctx := NewRetailContext()

	assert.Equal(t, 12.0, NormOr(ctx, "typical_stock_turnover", 99))
	assert.Equal(t, 99.0, NormOr(ctx, "nonexistent", 99))
	assert.Equal(t, 0.3, ThresholdOr(ctx, "top_seller_revenue_percentile", 0.5))
	assert.Equal(t, 0.5, ThresholdOr(ctx, "nonexistent", 0.5))
}

func TestRegistryNew(t *testing.T) {
	r := DefaultRegistry()

	ctx, err := r.New("retail")
	require.NoError(t, err)
	assert.Equal(t, "retail", ctx.Industry())

	// Keys are case-insensitive.
	_, err = r.New("Retail")
	assert.NoError(t, err)

	_, err = r.New("aviation")
	var cerr *ContextError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "available: retail")
}

func TestRegistryRegisterAndList(t *testing.T) {
	r := DefaultRegistry()
	r.Register("Cafe", func() Context { return NewRetailContext() })

	assert.Equal(t, []string{"cafe", "retail"}, r.Industries())

	_, err := r.New("cafe")
	assert.NoError(t, err)
}
