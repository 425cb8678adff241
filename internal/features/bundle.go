// Package features turns a validated raw table into the typed feature bundle
// the analyst checks consume: the inventory snapshot, descriptive column
// statistics and per-product sales velocity.
package features

import (
	"time"

	"github.com/andresuchdata/bizlens/internal/dataset"
)

// Product is one inventory snapshot entry merged with whatever sales signal
// the input carried. Optional numeric fields are pointers: absence means the
// column was missing or null, never zero.
type Product struct {
	ID       string
	Name     string
	Quantity float64
	Price    *float64
	AsOfDate *time.Time

	// DailySales is the actual daily sales rate, either merged from sales
	// events or carried in an explicit daily_sales column.
	DailySales *float64
	// SalesPerDay and WeeklySales are provided legacy rate columns.
	SalesPerDay *float64
	WeeklySales *float64
}

// SalesEvent is one sales record referencing a snapshot product.
type SalesEvent struct {
	ProductID string
	Date      time.Time
	Units     float64
}

// NumericSummary holds descriptive statistics for one numeric column.
type NumericSummary struct {
	Sum  float64
	Mean float64
	Min  float64
	Max  float64
	Std  float64
}

// CategoricalSummary holds descriptive statistics for one non-numeric column.
type CategoricalSummary struct {
	UniqueCount int
	ValueCounts map[string]int
}

// Bundle is the immutable output of feature extraction. It is created fresh
// per analysis call, handed to checks by reference, and discarded with the
// call; nothing caches it across calls.
type Bundle struct {
	Format   dataset.Format
	AsOfDate *time.Time
	RowCount int

	NumericStats     map[string]NumericSummary
	CategoricalStats map[string]CategoricalSummary

	// HasSalesData reports whether any sales events were present in the
	// input, before temporal filtering.
	HasSalesData bool
	// ProductsWithSales counts snapshot products that received an actual
	// velocity from the sales events.
	ProductsWithSales int
	// SalesDataError notes a non-fatal failure while processing the optional
	// sales source; the run proceeded without it.
	SalesDataError string

	// Products is the working snapshot, one entry per product_id.
	Products []Product
	// Table is the working snapshot table the products were built from.
	Table *dataset.Table
}
