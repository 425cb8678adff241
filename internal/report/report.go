// Package report renders analysis results as a plain-language weekly report
// aimed at business owners, not analysts.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/bizlens/internal/domain"
)

// Input carries everything the generator needs to render a report.
type Input struct {
	BusinessName string
	Industry     string
	GeneratedAt  time.Time
	Insights     []domain.Insight
}

// Generator renders weekly reports in markdown.
type Generator struct {
	maxInsights int
}

// NewGenerator builds a Generator. Reports show at most maxInsights
// insights; zero or negative means no limit.
func NewGenerator(maxInsights int) *Generator {
	return &Generator{maxInsights: maxInsights}
}

// Generate renders the report. Insights are assumed to be prioritized
// already; the generator preserves their order.
func (g *Generator) Generate(in Input) string {
	var b strings.Builder

	name := in.BusinessName
	if name == "" {
		name = "Your Business"
	}
	when := in.GeneratedAt
	if when.IsZero() {
		when = time.Now()
	}

	fmt.Fprintf(&b, "# Weekly Business Report: %s\n\n", name)
	fmt.Fprintf(&b, "*Generated on %s*\n\n", when.Format("January 2, 2006"))
	if in.Industry != "" {
		fmt.Fprintf(&b, "*Industry: %s*\n\n", in.Industry)
	}

	shown := in.Insights
	if g.maxInsights > 0 && len(shown) > g.maxInsights {
		shown = shown[:g.maxInsights]
	}

	b.WriteString(headline(shown))
	b.WriteString("\n\n")

	if len(shown) == 0 {
		b.WriteString("No issues were found in this week's data. Keep up the good work!\n")
		return b.String()
	}

	b.WriteString("## What Needs Your Attention\n\n")
	for i, insight := range shown {
		b.WriteString(renderInsight(i+1, insight))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// headline summarizes the week in one sentence, leading with the most
// urgent finding.
func headline(list []domain.Insight) string {
	if len(list) == 0 {
		return "## This Week at a Glance\n\nEverything looks healthy this week."
	}

	counts := map[domain.Severity]int{}
	for _, ins := range list {
		counts[ins.Severity]++
	}

	var summary string
	switch {
	case counts[domain.SeverityCritical] > 0:
		summary = fmt.Sprintf("%s requiring immediate attention, %s in total.",
			countPhrase(counts[domain.SeverityCritical], "urgent issue"),
			countPhrase(len(list), "finding"))
	case counts[domain.SeverityHigh] > 0:
		summary = fmt.Sprintf("%s that should be acted on soon, %s in total.",
			countPhrase(counts[domain.SeverityHigh], "issue"),
			countPhrase(len(list), "finding"))
	default:
		summary = fmt.Sprintf("%s worth reviewing. Nothing urgent this week.",
			countPhrase(len(list), "finding"))
	}
	return "## This Week at a Glance\n\n" + summary
}

func countPhrase(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func renderInsight(rank int, ins domain.Insight) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %d. %s\n\n", rank, ins.Title)
	fmt.Fprintf(&b, "**Priority:** %s\n\n", ins.Severity.Label())
	b.WriteString(ins.Description)
	b.WriteString("\n")
	if ins.Recommendation != "" {
		fmt.Fprintf(&b, "\n**What to do:** %s\n", ins.Recommendation)
	}
	return b.String()
}
