package dataset

import (
	"strconv"
	"strings"
	"time"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

// NormalizeColumnName collapses a header cell to a canonical key so that
// "Units Sold", "units_sold" and "units-sold" all address the same column.
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// Table is a bounded in-memory tabular dataset. Cells are raw strings until
// validation; an empty string is a null cell.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a Table over the given header and rows. Short rows are
// padded so every row has one cell per column.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		key := NormalizeColumnName(c)
		if _, ok := t.index[key]; !ok {
			t.index[key] = i
		}
	}
	for _, row := range rows {
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ColumnIndex returns the position of the first column matching any of the
// given names after normalization, or -1.
func (t *Table) ColumnIndex(names ...string) int {
	for _, name := range names {
		if idx, ok := t.index[NormalizeColumnName(name)]; ok {
			return idx
		}
	}
	return -1
}

// HasColumn reports whether any of the given column names is present.
func (t *Table) HasColumn(names ...string) bool {
	return t.ColumnIndex(names...) >= 0
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the trimmed cell at row i for the first matching column, or
// "" when the column is absent.
func (t *Table) Value(i int, names ...string) string {
	idx := t.ColumnIndex(names...)
	if idx < 0 || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][idx])
}

// IsNull reports whether the cell at row i for the column is empty or the
// column is absent.
func (t *Table) IsNull(i int, names ...string) bool {
	return t.Value(i, names...) == ""
}

// Float parses the cell as a float, tolerating thousands separators.
// The second return is false for null or unparseable cells.
func (t *Table) Float(i int, names ...string) (float64, bool) {
	v := t.Value(i, names...)
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses a cell value as a calendar date using the layouts the
// snapshot files are seen in.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Date parses the cell at row i for the column as a date.
func (t *Table) Date(i int, names ...string) (time.Time, bool) {
	return ParseDate(t.Value(i, names...))
}
