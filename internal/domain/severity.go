package domain

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityWeights drive prioritization. Higher sorts first.
var severityWeights = map[Severity]int{
	SeverityCritical: 100,
	SeverityHigh:     75,
	SeverityMedium:   50,
	SeverityLow:      25,
	SeverityInfo:     10,
}

// Weight returns the prioritization weight for a severity. Unknown
// severities weigh 0 and sort last.
func (s Severity) Weight() int {
	return severityWeights[s]
}

// Label returns the operator-facing label used in reports.
func (s Severity) Label() string {
	switch s {
	case SeverityCritical:
		return "Immediate attention"
	case SeverityHigh:
		return "Action needed soon"
	case SeverityMedium:
		return "Monitor"
	default:
		return "Informational"
	}
}

// InsightType classifies what kind of finding an insight is.
type InsightType string

const (
	InsightTypeRisk        InsightType = "risk"
	InsightTypeAnomaly     InsightType = "anomaly"
	InsightTypeOpportunity InsightType = "opportunity"
)
