package domain

import "time"

// Insight is a single finding produced by a check. Once built it is never
// mutated; the prioritizer reorders slices of insights but not their content.
type Insight struct {
	CheckName      string      `json:"check_name"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Severity       Severity    `json:"severity"`
	Type           InsightType `json:"insight_type"`
	Metrics        *Fields     `json:"metrics"`
	Recommendation string      `json:"recommendation,omitempty"`
	Metadata       *Fields     `json:"metadata,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`

	// Sequence is the insertion index assigned by the engine when collecting
	// check output. It is the final prioritization tie-break: insights built
	// in the same run often share a wall-clock timestamp.
	Sequence int `json:"-"`
}
