package industry

import "github.com/andresuchdata/bizlens/internal/dataset"

// RetailContext carries thresholds and norms for small retail shops.
type RetailContext struct {
	thresholds map[string]float64
	norms      map[string]float64
}

// NewRetailContext builds the retail context with its standard values.
func NewRetailContext() *RetailContext {
	return &RetailContext{
		thresholds: map[string]float64{
			"low_stock_ratio":          0.2,
			"high_stock_ratio":         2.0,
			"slow_moving_days":         30,
			"fast_moving_threshold":    5,
			"reorder_point_multiplier": 1.5,
			// Days-of-stock thresholds for stock-out risk.
			"critical_days_of_stock":        7,
			"medium_days_of_stock":          14,
			"top_seller_revenue_percentile": 0.3,
			"sales_lookback_days":           30,
			"min_sales_days_required":       7,
		},
		norms: map[string]float64{
			"typical_stock_turnover":    12, // times per year
			"typical_margin":            0.30,
			"seasonal_variation_factor": 1.5,
			"weekend_sales_boost":       1.2,
		},
	}
}

func (c *RetailContext) Industry() string { return "retail" }

func (c *RetailContext) Threshold(name string) (float64, error) {
	v, ok := c.thresholds[name]
	if !ok {
		return 0, contextErrorf("threshold %q not found in retail context", name)
	}
	return v, nil
}

func (c *RetailContext) Norm(name string) (float64, error) {
	v, ok := c.norms[name]
	if !ok {
		return 0, contextErrorf("norm %q not found in retail context", name)
	}
	return v, nil
}

func (c *RetailContext) RequiredColumns() []string {
	return []string{"product_id", "product_name", "quantity", "price"}
}

func (c *RetailContext) ColumnTypes() map[string]dataset.ColumnType {
	return map[string]dataset.ColumnType{
		"product_id":   dataset.TypeString,
		"product_name": dataset.TypeString,
		"quantity":     dataset.TypeInt,
		"price":        dataset.TypeFloat,
	}
}
