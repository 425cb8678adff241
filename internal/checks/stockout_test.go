package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizlens/internal/dataset"
	"github.com/andresuchdata/bizlens/internal/domain"
	"github.com/andresuchdata/bizlens/internal/features"
	"github.com/andresuchdata/bizlens/internal/industry"
)

func fptr(v float64) *float64 { return &v }

// bareContext has no thresholds at all, so mandatory lookups fail.
type bareContext struct{}

func (bareContext) Industry() string                 { return "bare" }
func (bareContext) Threshold(string) (float64, error) { return 0, assert.AnError }
func (bareContext) Norm(string) (float64, error)      { return 0, assert.AnError }
func (bareContext) RequiredColumns() []string         { return nil }
func (bareContext) ColumnTypes() map[string]dataset.ColumnType {
	return nil
}

func legacyBundle(columns []string, products []features.Product, hasSales bool, withSales int) *features.Bundle {
	return &features.Bundle{
		Format:            dataset.FormatLegacy,
		Table:             dataset.NewTable(columns, [][]string{make([]string, len(columns))}),
		RowCount:          len(products),
		Products:          products,
		HasSalesData:      hasSales,
		ProductsWithSales: withSales,
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		name        string
		days        float64
		topSeller   bool
		want        domain.Severity
	}{
		{name: "under critical threshold", days: 3, want: domain.SeverityHigh},
		{name: "under critical threshold top seller", days: 3, topSeller: true, want: domain.SeverityCritical},
		{name: "between thresholds", days: 10, want: domain.SeverityMedium},
		{name: "between thresholds top seller", days: 10, topSeller: true, want: domain.SeverityHigh},
		{name: "at medium threshold", days: 14, want: domain.SeverityLow},
		{name: "at medium threshold top seller", days: 14, topSeller: true, want: domain.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, severityFor(tt.days, tt.topSeller, 7, 14))
		})
	}
}

func TestNearestRankQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
		ok     bool
	}{
		{name: "two values top 30 percent", values: []float64{100, 900}, q: 0.7, want: 900, ok: true},
		{name: "single value", values: []float64{42}, q: 0.7, want: 42, ok: true},
		{name: "five values", values: []float64{10, 20, 30, 40, 50}, q: 0.7, want: 40, ok: true},
		{name: "empty", values: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nearestRankQuantile(tt.values, tt.q)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExecuteSkipsWithoutProductColumns(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	bundle := &features.Bundle{
		Table: dataset.NewTable([]string{"sku", "amount"}, [][]string{{"P1", "10"}}),
	}

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestExecuteFailsWhenThresholdMissing(t *testing.T) {
	check := NewStockOutRiskCheck()
	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{{ID: "P1", Name: "Widget", Quantity: 10}},
		false, 0,
	)

	_, err := check.Execute(bundle, bareContext{})
	assert.Error(t, err)
}

func TestExecuteActualSalesCriticalTopSeller(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{
			{ID: "A", Name: "Widget", Quantity: 10, Price: fptr(100), DailySales: fptr(5)},
			{ID: "B", Name: "Gadget", Quantity: 100, Price: fptr(1), DailySales: fptr(2)},
		},
		true, 2,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	require.Len(t, insights, 1)

	ins := insights[0]
	assert.Equal(t, domain.SeverityCritical, ins.Severity)
	assert.Equal(t, domain.InsightTypeRisk, ins.Type)
	assert.Equal(t, "Stock-Out Risk: 1 product needs immediate attention", ins.Title)
	assert.Contains(t, ins.Description, "Widget (may run out this week at the current rate of sales)")
	assert.Contains(t, ins.Description, "recent sales")

	assert.Equal(t, 1.0, ins.Metrics.Float("at_risk_count"))
	assert.Equal(t, 1.0, ins.Metrics.Float("critical_count"))
	assert.Equal(t, 1.0, ins.Metrics.Float("top_sellers_at_risk"))
	assert.Equal(t, 2.0, ins.Metrics.Float("total_products"))
	assert.Equal(t, 2.0, ins.Metrics.Float("min_days_of_stock"))

	ids, ok := ins.Metadata.Get("critical_product_ids")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, ids)
	estimated, ok := ins.Metadata.Get("sales_velocity_estimated")
	require.True(t, ok)
	assert.Equal(t, false, estimated)
}

func TestExecuteEstimatedVelocityWithoutSales(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	// 10 units at the retail turnover estimate is roughly a month of cover.
	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{{ID: "P1", Name: "Widget", Quantity: 10, Price: fptr(4)}},
		false, 0,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	require.Len(t, insights, 1)

	info := insights[0]
	assert.Equal(t, domain.SeverityInfo, info.Severity)
	assert.Equal(t, domain.InsightTypeAnomaly, info.Type)
	assert.Contains(t, info.Description, "Sales data was not provided")
	hasSales, ok := info.Metrics.Get("has_sales_data")
	require.True(t, ok)
	assert.Equal(t, false, hasSales)
	assert.Equal(t, 0.0, info.Metrics.Float("coverage_percentage"))
}

func TestExecutePartialCoverage(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{
			{ID: "A", Name: "Widget", Quantity: 500, Price: fptr(4), DailySales: fptr(1)},
			{ID: "B", Name: "Gadget", Quantity: 500, Price: fptr(4)},
			{ID: "C", Name: "Doohickey", Quantity: 500, Price: fptr(4)},
		},
		true, 1,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	require.Len(t, insights, 1)

	info := insights[0]
	assert.Equal(t, domain.SeverityInfo, info.Severity)
	assert.Contains(t, info.Description, "only 1 of 3 products")
	assert.InDelta(t, 33.3, info.Metrics.Float("coverage_percentage"), 0.5)
}

func TestExecuteWeeklySalesFallback(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	// 10 units selling 14/week runs out in 5 days.
	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "weekly_sales"},
		[]features.Product{{ID: "P1", Name: "Widget", Quantity: 10, WeeklySales: fptr(14)}},
		false, 0,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	require.Len(t, insights, 2)

	assert.Equal(t, domain.SeverityInfo, insights[0].Severity)

	risk := insights[1]
	assert.Equal(t, domain.SeverityHigh, risk.Severity)
	assert.Equal(t, "Stock-Out Risk: 1 product needs action soon", risk.Title)
	assert.Equal(t, 5.0, risk.Metrics.Float("min_days_of_stock"))
	// No price column means no top-seller elevation.
	assert.Equal(t, 0.0, risk.Metrics.Float("top_sellers_at_risk"))
}

func TestExecuteZeroRateFlooredNotAtRisk(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	// A floored 0.01/day rate on a single unit is 100 days of cover.
	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{{ID: "P1", Name: "Widget", Quantity: 1, Price: fptr(4), DailySales: fptr(0)}},
		true, 1,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestExecuteProvidedRateNullCellNotAtRisk(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "sales_per_day"},
		[]features.Product{{ID: "P1", Name: "Widget", Quantity: 10}},
		false, 0,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	// Only the data sufficiency note, no risk insight.
	require.Len(t, insights, 1)
	assert.Equal(t, domain.SeverityInfo, insights[0].Severity)
}

func TestExecuteMixedConfidenceNote(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	// B is sold out already; its estimated rate floors at 0.01/day and its
	// zero quantity puts it at risk on estimated data.
	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{
			{ID: "A", Name: "Widget", Quantity: 10, Price: fptr(100), DailySales: fptr(5)},
			{ID: "B", Name: "Gadget", Quantity: 0, Price: fptr(1)},
		},
		true, 1,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)

	var risk *domain.Insight
	for i := range insights {
		if insights[i].Type == domain.InsightTypeRisk {
			risk = &insights[i]
		}
	}
	require.NotNil(t, risk)
	assert.Contains(t, risk.Description, "For 1 product without sales history")
	estimated, _ := risk.Metadata.Get("sales_velocity_estimated")
	assert.Equal(t, true, estimated)
}

func TestExecuteKnownScenarios(t *testing.T) {
	ctx := industry.NewRetailContext()

	t.Run("four days of cover without price data is high", func(t *testing.T) {
		bundle := legacyBundle(
			[]string{"product_id", "product_name", "quantity"},
			[]features.Product{{ID: "P1", Name: "Widget", Quantity: 20, DailySales: fptr(5)}},
			true, 1,
		)

		insights, err := NewStockOutRiskCheck().Execute(bundle, ctx)
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, domain.SeverityHigh, insights[0].Severity)
		assert.Equal(t, 4.0, insights[0].Metrics.Float("min_days_of_stock"))
	})

	t.Run("estimated cover of a month triggers only the data note", func(t *testing.T) {
		bundle := legacyBundle(
			[]string{"product_id", "product_name", "quantity", "price"},
			[]features.Product{{ID: "P1", Name: "Widget", Quantity: 100, Price: fptr(4)}},
			false, 0,
		)

		insights, err := NewStockOutRiskCheck().Execute(bundle, ctx)
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, domain.SeverityInfo, insights[0].Severity)
	})

	t.Run("critical top seller dominates overall severity", func(t *testing.T) {
		bundle := legacyBundle(
			[]string{"product_id", "product_name", "quantity", "price"},
			[]features.Product{
				{ID: "A", Name: "Widget", Quantity: 15, Price: fptr(50), DailySales: fptr(5)},
				{ID: "B", Name: "Gadget", Quantity: 15, Price: fptr(1), DailySales: fptr(5)},
			},
			true, 2,
		)

		insights, err := NewStockOutRiskCheck().Execute(bundle, ctx)
		require.NoError(t, err)
		require.Len(t, insights, 1)

		risk := insights[0]
		assert.Equal(t, domain.SeverityCritical, risk.Severity)
		assert.Equal(t, 1.0, risk.Metrics.Float("critical_count"))
		assert.Equal(t, 1.0, risk.Metrics.Float("high_count"))
		assert.Equal(t, 2.0, risk.Metrics.Float("at_risk_count"))
		assert.Contains(t, risk.Description, "**Immediate attention:**")
		assert.Contains(t, risk.Description, "**Action needed soon:**")
	})
}

func TestExecuteMetricsKeyOrder(t *testing.T) {
	check := NewStockOutRiskCheck()
	ctx := industry.NewRetailContext()

	bundle := legacyBundle(
		[]string{"product_id", "product_name", "quantity", "price"},
		[]features.Product{
			{ID: "A", Name: "Widget", Quantity: 10, Price: fptr(100), DailySales: fptr(5)},
		},
		true, 1,
	)

	insights, err := check.Execute(bundle, ctx)
	require.NoError(t, err)
	require.Len(t, insights, 1)

	assert.Equal(t, []string{
		"at_risk_count",
		"critical_count",
		"high_count",
		"medium_count",
		"top_sellers_at_risk",
		"min_days_of_stock",
		"avg_days_of_stock",
		"total_products",
	}, insights[0].Metrics.Keys())
}
