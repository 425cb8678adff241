package engine

import (
	"context"
	"time"

	"github.com/andresuchdata/bizlens/internal/report"
)

// GenerateReport renders a result as a plain-language weekly report.
func (e *Engine) GenerateReport(businessName string, result *Result) string {
	gen := report.NewGenerator(0)
	return gen.Generate(report.Input{
		BusinessName: businessName,
		Industry:     result.Industry,
		GeneratedAt:  time.Now(),
		Insights:     result.Insights,
	})
}

// AnalyzeAndReport runs Analyze and renders the result in one call.
func (e *Engine) AnalyzeAndReport(ctx context.Context, industryKey, inventoryPath, salesPath, businessName string) (*Result, string, error) {
	result, err := e.Analyze(ctx, industryKey, inventoryPath, salesPath)
	if err != nil {
		return nil, "", err
	}
	return result, e.GenerateReport(businessName, result), nil
}
