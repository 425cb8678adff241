package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Format identifies which of the two supported input shapes a table uses.
type Format string

const (
	// FormatUnified is a single table interleaving inventory snapshot rows
	// and sales event rows.
	FormatUnified Format = "unified"
	// FormatLegacy is an inventory-only table, optionally paired with a
	// separate sales table.
	FormatLegacy Format = "legacy"
)

// ColumnType declares the expected type of a legacy-format column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
)

// DetectFormat classifies a table. A table is unified iff it simultaneously
// carries as-of-date, starting-quantity, sale-date and units-sold columns;
// anything else is legacy.
func DetectFormat(t *Table) Format {
	if t.HasColumn("as_of_date") &&
		t.HasColumn("starting_quantity") &&
		t.HasColumn("date") &&
		t.HasColumn("units_sold") {
		return FormatUnified
	}
	return FormatLegacy
}

// Validator checks a raw table against the expected schema before any
// computation runs.
type Validator struct {
	requiredColumns []string
	columnTypes     map[string]ColumnType
}

// NewValidator builds a validator for the legacy shape described by the
// business context. The unified shape has a fixed schema and ignores these.
func NewValidator(requiredColumns []string, columnTypes map[string]ColumnType) *Validator {
	return &Validator{
		requiredColumns: requiredColumns,
		columnTypes:     columnTypes,
	}
}

// Validate fails with a ValidationError when the table matches neither
// supported shape or violates the shape it matches.
func (v *Validator) Validate(t *Table) error {
	if t == nil || t.Len() == 0 {
		return validationErrorf("dataset is empty")
	}

	if DetectFormat(t) == FormatUnified {
		return v.validateUnified(t)
	}
	return v.validateLegacy(t)
}

func (v *Validator) validateUnified(t *Table) error {
	for _, col := range []string{"as_of_date", "product_id", "starting_quantity"} {
		if !t.HasColumn(col) {
			return validationErrorf("unified format missing required column: %s", col)
		}
	}

	hasInventory := false
	for i := 0; i < t.Len(); i++ {
		if !t.IsNull(i, "starting_quantity") {
			hasInventory = true
			if t.IsNull(i, "product_id") {
				return validationErrorf("inventory row %d has no product_id", i+1)
			}
		}
		if !t.IsNull(i, "date") && !t.IsNull(i, "units_sold") {
			if t.IsNull(i, "product_id") {
				return validationErrorf("sales row %d has no product_id", i+1)
			}
		}
	}
	if !hasInventory {
		return validationErrorf("unified format must have at least one row with starting_quantity (inventory snapshot)")
	}
	return nil
}

func (v *Validator) validateLegacy(t *Table) error {
	var missing []string
	for _, col := range v.requiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return validationErrorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	for _, col := range v.requiredColumns {
		for i := 0; i < t.Len(); i++ {
			if t.IsNull(i, col) {
				return validationErrorf("required column %q contains null values", col)
			}
		}
	}

	for col, colType := range v.columnTypes {
		if !t.HasColumn(col) {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			if err := checkCellType(t.Value(i, col), colType); err != nil {
				return validationErrorf("column %q row %d: %s", col, i+1, err)
			}
		}
	}
	return nil
}

func checkCellType(v string, colType ColumnType) error {
	if v == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(v, ",", "")
	switch colType {
	case TypeInt:
		if _, err := strconv.ParseInt(cleaned, 10, 64); err != nil {
			// Integer columns accept whole-number floats like "3.0".
			f, ferr := strconv.ParseFloat(cleaned, 64)
			if ferr != nil || f != float64(int64(f)) {
				return fmt.Errorf("value %q is not an integer", v)
			}
		}
	case TypeFloat:
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			return fmt.Errorf("value %q is not a number", v)
		}
	}
	return nil
}
