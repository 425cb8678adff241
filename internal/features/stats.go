package features

import (
	"math"

	"github.com/andresuchdata/bizlens/internal/dataset"
)

// date-like columns are excluded from column statistics
var statSkipColumns = map[string]struct{}{
	"asofdate": {},
	"date":     {},
}

// computeStats runs one descriptive-statistics pass over the snapshot table.
// A column is numeric when every non-null cell parses as a number and at
// least one cell is non-null; everything else is categorical.
func computeStats(t *dataset.Table) (map[string]NumericSummary, map[string]CategoricalSummary) {
	numeric := make(map[string]NumericSummary)
	categorical := make(map[string]CategoricalSummary)

	for _, col := range t.Columns {
		key := dataset.NormalizeColumnName(col)
		if _, skip := statSkipColumns[key]; skip {
			continue
		}

		values := make([]float64, 0, t.Len())
		raw := make([]string, 0, t.Len())
		isNumeric := true
		for i := 0; i < t.Len(); i++ {
			cell := t.Value(i, col)
			if cell == "" {
				continue
			}
			raw = append(raw, cell)
			if f, ok := t.Float(i, col); ok {
				values = append(values, f)
			} else {
				isNumeric = false
			}
		}

		if isNumeric && len(values) > 0 {
			numeric[key] = summarize(values)
			continue
		}
		if len(raw) > 0 {
			counts := make(map[string]int)
			for _, v := range raw {
				counts[v]++
			}
			categorical[key] = CategoricalSummary{
				UniqueCount: len(counts),
				ValueCounts: counts,
			}
		}
	}
	return numeric, categorical
}

func summarize(values []float64) NumericSummary {
	s := NumericSummary{
		Min: values[0],
		Max: values[0],
	}
	for _, v := range values {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = s.Sum / float64(len(values))

	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - s.Mean
			ss += d * d
		}
		// sample standard deviation
		s.Std = math.Sqrt(ss / float64(len(values)-1))
	}
	return s
}
