package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/bizlens/internal/dataset"
)

var unifiedColumns = []string{"product_id", "product_name", "starting_quantity", "price", "as_of_date", "date", "units_sold"}

func TestExtractUnified(t *testing.T) {
	table := dataset.NewTable(unifiedColumns, [][]string{
		{"P1", "Widget", "10", "100", "2024-01-10", "", ""},
		{"P2", "Gadget", "200", "1", "2024-01-10", "", ""},
		{"P1", "", "", "", "", "2024-01-12", "5"},
		{"P1", "", "", "", "", "2024-01-13", "5"},
		{"P2", "", "", "", "", "2024-01-12", "1"},
	})

	bundle, err := NewExtractor().Extract(table, nil)
	require.NoError(t, err)

	assert.Equal(t, dataset.FormatUnified, bundle.Format)
	require.NotNil(t, bundle.AsOfDate)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), *bundle.AsOfDate)
	assert.Equal(t, 2, bundle.RowCount)
	assert.True(t, bundle.HasSalesData)
	assert.Equal(t, 2, bundle.ProductsWithSales)
	assert.Empty(t, bundle.SalesDataError)

	require.Len(t, bundle.Products, 2)
	p1 := bundle.Products[0]
	assert.Equal(t, "P1", p1.ID)
	assert.Equal(t, "Widget", p1.Name)
	assert.Equal(t, 10.0, p1.Quantity)
	require.NotNil(t, p1.Price)
	assert.Equal(t, 100.0, *p1.Price)
	require.NotNil(t, p1.DailySales)
	assert.Equal(t, 5.0, *p1.DailySales)

	p2 := bundle.Products[1]
	require.NotNil(t, p2.DailySales)
	assert.Equal(t, 1.0, *p2.DailySales)
}

func TestExtractUnifiedRowMatchingBothPredicates(t *testing.T) {
	// A single row can carry the snapshot and a sales event at once; it
	// must feed both the product list and the velocity merge.
	table := dataset.NewTable(unifiedColumns, [][]string{
		{"P1", "Widget", "20", "100", "2024-01-01", "2024-01-02", "5"},
	})

	bundle, err := NewExtractor().Extract(table, nil)
	require.NoError(t, err)

	assert.True(t, bundle.HasSalesData)
	assert.Equal(t, 1, bundle.ProductsWithSales)
	require.Len(t, bundle.Products, 1)
	assert.Equal(t, 20.0, bundle.Products[0].Quantity)
	require.NotNil(t, bundle.Products[0].DailySales)
	assert.Equal(t, 5.0, *bundle.Products[0].DailySales)
}

func TestExtractUnifiedDuplicateInventoryRowsFirstWins(t *testing.T) {
	table := dataset.NewTable(unifiedColumns, [][]string{
		{"P1", "Widget", "10", "100", "2024-01-10", "", ""},
		{"P1", "Widget again", "999", "100", "2024-01-10", "", ""},
	})

	bundle, err := NewExtractor().Extract(table, nil)
	require.NoError(t, err)

	require.Len(t, bundle.Products, 1)
	assert.Equal(t, 10.0, bundle.Products[0].Quantity)
	assert.Equal(t, "Widget", bundle.Products[0].Name)
}

func TestExtractUnifiedInvalidAsOfDateIsFatal(t *testing.T) {
	table := dataset.NewTable(unifiedColumns, [][]string{
		{"P1", "Widget", "10", "100", "not a date", "", ""},
	})

	_, err := NewExtractor().Extract(table, nil)
	var xerr *ExtractionError
	require.ErrorAs(t, err, &xerr)
	assert.Contains(t, xerr.Reason, "as_of_date")
}

func TestExtractUnifiedSkipsUnparseableSalesRows(t *testing.T) {
	table := dataset.NewTable(unifiedColumns, [][]string{
		{"P1", "Widget", "10", "100", "2024-01-10", "", ""},
		{"P1", "", "", "", "", "whenever", "5"},
		{"P1", "", "", "", "", "2024-01-12", "lots"},
	})

	bundle, err := NewExtractor().Extract(table, nil)
	require.NoError(t, err)

	assert.False(t, bundle.HasSalesData)
	assert.Nil(t, bundle.Products[0].DailySales)
}

func TestExtractLegacyWithSalesTable(t *testing.T) {
	inventory := dataset.NewTable(
		[]string{"product_id", "product_name", "quantity", "price"},
		[][]string{{"P1", "Widget", "10", "100"}},
	)
	sales := dataset.NewTable(
		[]string{"date", "product_id", "units_sold"},
		[][]string{
			{"2024-01-12", "P1", "5"},
			{"2024-01-13", "P1", "3"},
		},
	)

	extractor := NewExtractor(WithClock(func() time.Time {
		return time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	}))
	bundle, err := extractor.Extract(inventory, sales)
	require.NoError(t, err)

	assert.Equal(t, dataset.FormatLegacy, bundle.Format)
	assert.Nil(t, bundle.AsOfDate)
	assert.True(t, bundle.HasSalesData)
	assert.Equal(t, 1, bundle.ProductsWithSales)
	require.NotNil(t, bundle.Products[0].DailySales)
	assert.Equal(t, 4.0, *bundle.Products[0].DailySales)
}

func TestExtractLegacyMalformedSalesTableIsNonFatal(t *testing.T) {
	inventory := dataset.NewTable(
		[]string{"product_id", "product_name", "quantity", "price"},
		[][]string{{"P1", "Widget", "10", "100"}},
	)
	sales := dataset.NewTable(
		[]string{"date", "product_id"},
		[][]string{{"2024-01-12", "P1"}},
	)

	bundle, err := NewExtractor().Extract(inventory, sales)
	require.NoError(t, err)

	assert.False(t, bundle.HasSalesData)
	assert.Contains(t, bundle.SalesDataError, "units_sold")
	assert.Nil(t, bundle.Products[0].DailySales)
}

func TestExtractLegacyRateColumns(t *testing.T) {
	inventory := dataset.NewTable(
		[]string{"product_id", "product_name", "quantity", "price", "sales_per_day", "weekly_sales"},
		[][]string{{"P1", "Widget", "10", "100", "2.5", "14"}},
	)

	bundle, err := NewExtractor().Extract(inventory, nil)
	require.NoError(t, err)

	p := bundle.Products[0]
	require.NotNil(t, p.SalesPerDay)
	assert.Equal(t, 2.5, *p.SalesPerDay)
	require.NotNil(t, p.WeeklySales)
	assert.Equal(t, 14.0, *p.WeeklySales)
	assert.Nil(t, p.DailySales)
	assert.False(t, bundle.HasSalesData)
}

func TestExtractNoProductColumnsYieldsNoProducts(t *testing.T) {
	table := dataset.NewTable(
		[]string{"sku", "amount"},
		[][]string{{"P1", "10"}},
	)

	bundle, err := NewExtractor().Extract(table, nil)
	require.NoError(t, err)
	assert.Empty(t, bundle.Products)
}

func TestExtractComputesColumnStats(t *testing.T) {
	table := dataset.NewTable(
		[]string{"product_id", "product_name", "quantity", "price"},
		[][]string{
			{"P1", "Widget", "10", "4"},
			{"P2", "Gadget", "30", "6"},
		},
	)

	bundle, err := NewExtractor().Extract(table, nil)
	require.NoError(t, err)

	qty, ok := bundle.NumericStats["quantity"]
	require.True(t, ok)
	assert.Equal(t, 40.0, qty.Sum)
	assert.Equal(t, 20.0, qty.Mean)
	assert.Equal(t, 10.0, qty.Min)
	assert.Equal(t, 30.0, qty.Max)

	names, ok := bundle.CategoricalStats["productname"]
	require.True(t, ok)
	assert.Equal(t, 2, names.UniqueCount)
	assert.Equal(t, 1, names.ValueCounts["Widget"])
}
