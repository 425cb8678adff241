// Package engine wires the analysis pipeline together: ingest, validate,
// extract features, run checks, prioritize insights.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/bizlens/internal/checks"
	"github.com/andresuchdata/bizlens/internal/dataset"
	"github.com/andresuchdata/bizlens/internal/domain"
	"github.com/andresuchdata/bizlens/internal/features"
	"github.com/andresuchdata/bizlens/internal/industry"
	"github.com/andresuchdata/bizlens/internal/insights"
)

// Diagnostic records a non-fatal problem encountered during a run. Failures
// of individual checks or of optional inputs never abort the pipeline; they
// are reported here instead.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Check   string `json:"check,omitempty"`
	Message string `json:"message"`
}

const (
	StageSalesIngest = "sales_ingest"
	StageExtraction  = "extraction"
	StageCheck       = "check"
)

// Result is the outcome of a single analysis run.
type Result struct {
	Industry    string           `json:"industry"`
	Format      string           `json:"format"`
	RowCount    int              `json:"row_count"`
	Insights    []domain.Insight `json:"insights"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

// Engine runs the analysis pipeline for a configured industry registry and
// check registry.
type Engine struct {
	industries industry.Registry
	checks     *checks.Registry
	extractor  *features.Extractor
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndustries replaces the industry registry.
func WithIndustries(r industry.Registry) Option {
	return func(e *Engine) { e.industries = r }
}

// WithChecks replaces the check registry.
func WithChecks(r *checks.Registry) Option {
	return func(e *Engine) { e.checks = r }
}

// WithExtractor replaces the feature extractor, mainly so callers can pin
// the clock or the sales lookback window.
func WithExtractor(x *features.Extractor) Option {
	return func(e *Engine) { e.extractor = x }
}

// New builds an Engine with the default retail industry registry and the
// default check registry.
func New(opts ...Option) *Engine {
	e := &Engine{
		industries: industry.DefaultRegistry(),
		checks:     checks.NewDefaultRegistry(),
		extractor:  features.NewExtractor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Industries lists the industry keys the engine can analyze.
func (e *Engine) Industries() []string {
	return e.industries.Industries()
}

// Analyze reads an inventory CSV (and an optional separate sales CSV) from
// disk and runs the pipeline. A missing or unreadable sales file is
// non-fatal: the run continues on the inventory snapshot alone and the
// failure is recorded as a diagnostic.
func (e *Engine) Analyze(ctx context.Context, industryKey, inventoryPath, salesPath string) (*Result, error) {
	table, err := dataset.ReadCSV(inventoryPath)
	if err != nil {
		return nil, err
	}

	var salesTable *dataset.Table
	var diags []Diagnostic
	if salesPath != "" {
		salesTable, err = dataset.ReadCSV(salesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", salesPath).Msg("sales file unreadable, continuing without sales data")
			diags = append(diags, Diagnostic{
				Stage:   StageSalesIngest,
				Message: fmt.Sprintf("sales file %s could not be read: %v", salesPath, err),
			})
			salesTable = nil
		}
	}

	result, err := e.AnalyzeTable(ctx, industryKey, table, salesTable)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = append(diags, result.Diagnostics...)
	return result, nil
}

// AnalyzeTable runs the pipeline on an already-parsed table: validate the
// data against the industry's requirements, extract features, run every
// applicable check, and return prioritized insights.
//
// Validation and extraction failures are fatal. A check failure is isolated:
// the run continues with the remaining checks and the failure is reported
// as a diagnostic.
func (e *Engine) AnalyzeTable(ctx context.Context, industryKey string, table, salesTable *dataset.Table) (*Result, error) {
	ictx, err := e.industries.New(industryKey)
	if err != nil {
		return nil, err
	}

	validator := dataset.NewValidator(ictx.RequiredColumns(), ictx.ColumnTypes())
	if err := validator.Validate(table); err != nil {
		return nil, err
	}

	bundle, err := e.extractor.Extract(table, salesTable)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Industry: ictx.Industry(),
		Format:   string(bundle.Format),
		RowCount: bundle.RowCount,
		Insights: []domain.Insight{},
	}
	if bundle.SalesDataError != "" {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   StageExtraction,
			Message: bundle.SalesDataError,
		})
	}

	var collected []domain.Insight
	for _, check := range e.checks.Applicable(ictx) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		found, err := check.Execute(bundle, ictx)
		if err != nil {
			execErr := &checks.ExecutionError{Check: check.Name(), Err: err}
			log.Error().Err(execErr).Str("check", check.Name()).Msg("check failed")
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   StageCheck,
				Check:   check.Name(),
				Message: execErr.Error(),
			})
			continue
		}
		log.Debug().Str("check", check.Name()).Int("insights", len(found)).Msg("check completed")
		collected = append(collected, found...)
	}

	for i := range collected {
		collected[i].Sequence = i
	}
	result.Insights = insights.Prioritize(collected)

	log.Info().
		Str("industry", result.Industry).
		Str("format", result.Format).
		Int("rows", result.RowCount).
		Int("insights", len(result.Insights)).
		Int("diagnostics", len(result.Diagnostics)).
		Msg("analysis complete")
	return result, nil
}
