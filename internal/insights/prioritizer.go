// Package insights orders generated insights so the most urgent findings
// surface first.
package insights

import (
	"sort"

	"github.com/andresuchdata/bizlens/internal/domain"
)

// Prioritize sorts insights by severity weight descending, then timestamp
// descending (newer first), then generation sequence ascending. The sequence
// tie-break makes ordering fully deterministic when a check emits several
// insights in the same instant.
//
// The input slice is not modified; a sorted copy is returned.
func Prioritize(insights []domain.Insight) []domain.Insight {
	out := make([]domain.Insight, len(insights))
	copy(out, insights)

	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := out[i].Severity.Weight(), out[j].Severity.Weight()
		if wi != wj {
			return wi > wj
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// TopN returns the first n insights of a prioritized slice, or all of them
// when fewer exist.
func TopN(insights []domain.Insight, n int) []domain.Insight {
	if n < 0 {
		n = 0
	}
	if n > len(insights) {
		n = len(insights)
	}
	return insights[:n]
}
