package features

import (
	"fmt"
	"time"

	"github.com/andresuchdata/bizlens/internal/dataset"
)

// ExtractionError reports a fatal failure while splitting, merging or
// aggregating the input table. The engine aborts the run; no partial bundle
// is returned.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "feature extraction: " + e.Reason
}

func extractionErrorf(format string, args ...any) error {
	return &ExtractionError{Reason: fmt.Sprintf(format, args...)}
}

// Extractor builds feature bundles from validated tables.
type Extractor struct {
	lookbackDays int
	now          func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLookbackDays sets the sales-velocity lookback window.
func WithLookbackDays(days int) Option {
	return func(e *Extractor) {
		if days > 0 {
			e.lookbackDays = days
		}
	}
}

// WithClock overrides the time source used as the velocity reference date
// when the snapshot has no as-of date.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an extractor. The default lookback window is 30 days.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		lookbackDays: 30,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract detects the input format, splits inventory from sales, computes
// column statistics and merges per-product sales velocity. For legacy input
// the optional salesTable supplies sales events; a malformed salesTable is
// non-fatal and only reduces coverage.
func (e *Extractor) Extract(table *dataset.Table, salesTable *dataset.Table) (*Bundle, error) {
	if table == nil || table.Len() == 0 {
		return nil, extractionErrorf("no data to extract")
	}

	bundle := &Bundle{Format: dataset.DetectFormat(table)}

	var events []SalesEvent
	var salesErr string

	if bundle.Format == dataset.FormatUnified {
		snapshot, unifiedEvents, asOf, err := splitUnified(table)
		if err != nil {
			return nil, err
		}
		bundle.Table = snapshot
		bundle.AsOfDate = asOf
		events = unifiedEvents
	} else {
		bundle.Table = table
		if salesTable != nil {
			events, salesErr = parseSalesTable(salesTable)
		}
	}

	bundle.RowCount = bundle.Table.Len()
	bundle.NumericStats, bundle.CategoricalStats = computeStats(bundle.Table)
	bundle.Products = buildProducts(bundle.Table, bundle.AsOfDate)

	if len(events) > 0 {
		bundle.HasSalesData = true
		velocity := CalculateVelocity(events, bundle.AsOfDate, e.lookbackDays, e.now())
		for i := range bundle.Products {
			if rate, ok := velocity[bundle.Products[i].ID]; ok {
				r := rate
				bundle.Products[i].DailySales = &r
				bundle.ProductsWithSales++
			}
		}
	}
	bundle.SalesDataError = salesErr

	return bundle, nil
}

// splitUnified separates a unified table into the inventory snapshot (rows
// with a non-null starting quantity, first occurrence per product) and the
// sales event set (rows with both date and units sold). The two predicates
// are independent: a row matching both contributes to both.
func splitUnified(table *dataset.Table) (*dataset.Table, []SalesEvent, *time.Time, error) {
	var invRows [][]string
	seen := make(map[string]struct{})
	var events []SalesEvent
	var asOf *time.Time

	for i := 0; i < table.Len(); i++ {
		if !table.IsNull(i, "starting_quantity") {
			id := table.Value(i, "product_id")
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				invRows = append(invRows, table.Rows[i])
				if asOf == nil && !table.IsNull(i, "as_of_date") {
					d, ok := table.Date(i, "as_of_date")
					if !ok {
						return nil, nil, nil, extractionErrorf(
							"invalid as_of_date %q on row %d", table.Value(i, "as_of_date"), i+1)
					}
					asOf = &d
				}
			}
		}

		if !table.IsNull(i, "date") && !table.IsNull(i, "units_sold") {
			date, ok := table.Date(i, "date")
			if !ok {
				continue
			}
			units, ok := table.Float(i, "units_sold")
			if !ok {
				continue
			}
			events = append(events, SalesEvent{
				ProductID: table.Value(i, "product_id"),
				Date:      date,
				Units:     units,
			})
		}
	}

	snapshot := dataset.NewTable(table.Columns, invRows)
	return snapshot, events, asOf, nil
}

// parseSalesTable reads a legacy separate sales table. Failures here are
// non-fatal by contract: the returned note is surfaced on the bundle and the
// run continues without actual velocity.
func parseSalesTable(t *dataset.Table) ([]SalesEvent, string) {
	for _, col := range []string{"date", "product_id", "units_sold"} {
		if !t.HasColumn(col) {
			return nil, fmt.Sprintf("sales table missing column %q", col)
		}
	}

	var events []SalesEvent
	for i := 0; i < t.Len(); i++ {
		date, ok := t.Date(i, "date")
		if !ok {
			continue
		}
		units, ok := t.Float(i, "units_sold")
		if !ok {
			continue
		}
		events = append(events, SalesEvent{
			ProductID: t.Value(i, "product_id"),
			Date:      date,
			Units:     units,
		})
	}
	if len(events) == 0 {
		return nil, "sales table contained no parseable events"
	}
	return events, ""
}

// buildProducts maps snapshot rows to typed products, first occurrence per
// product_id. When the table lacks a product_id or quantity column no
// products are built; checks treat that as "nothing to assess", not an error.
func buildProducts(t *dataset.Table, asOf *time.Time) []Product {
	if !t.HasColumn("product_id") {
		return nil
	}
	if !t.HasColumn("quantity") && !t.HasColumn("starting_quantity") {
		return nil
	}

	products := make([]Product, 0, t.Len())
	seen := make(map[string]struct{}, t.Len())
	for i := 0; i < t.Len(); i++ {
		id := t.Value(i, "product_id")
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		qty, _ := t.Float(i, "quantity")
		if t.IsNull(i, "quantity") {
			qty, _ = t.Float(i, "starting_quantity")
		}

		p := Product{
			ID:       id,
			Name:     t.Value(i, "product_name"),
			Quantity: qty,
			AsOfDate: asOf,
		}
		if p.Name == "" {
			p.Name = id
		}
		if v, ok := t.Float(i, "price"); ok {
			p.Price = &v
		}
		if v, ok := t.Float(i, "daily_sales"); ok {
			p.DailySales = &v
		}
		if v, ok := t.Float(i, "sales_per_day"); ok {
			p.SalesPerDay = &v
		}
		if v, ok := t.Float(i, "weekly_sales", "sales_per_week"); ok {
			p.WeeklySales = &v
		}
		products = append(products, p)
	}
	return products
}
