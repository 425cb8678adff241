package checks

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/bizlens/internal/domain"
	"github.com/andresuchdata/bizlens/internal/features"
	"github.com/andresuchdata/bizlens/internal/industry"
)

// Sales velocity sources and confidence tags carried per assessed product.
const (
	sourceActualSales = "actual_sales"
	sourceEstimated   = "estimated"
	sourceProvided    = "provided"

	confidenceHigh = "high"
	confidenceLow  = "low"
)

// minDailySales floors every daily sales rate so days-of-stock never divides
// by zero.
const minDailySales = 0.01

// StockOutRiskCheck identifies products at risk of running out of stock.
//
// Days-of-stock (quantity / average daily sales) drives the assessment.
// Severity is contextual: top sellers get elevated severity because their
// stock-outs have greater business impact.
type StockOutRiskCheck struct{}

// NewStockOutRiskCheck builds the check.
func NewStockOutRiskCheck() *StockOutRiskCheck {
	return &StockOutRiskCheck{}
}

func (c *StockOutRiskCheck) Name() string {
	return "stockout_risk"
}

func (c *StockOutRiskCheck) Description() string {
	return "Identifies products at risk of running out of stock based on days of cover"
}

// IsApplicable accepts any context: every industry with an inventory
// snapshot can be assessed for stock-out risk.
func (c *StockOutRiskCheck) IsApplicable(ctx industry.Context) bool {
	return true
}

// assessment is one product's evaluated stock-out position.
type assessment struct {
	product     features.Product
	dailySales  float64
	daysOfStock float64
	source      string
	confidence  string
	isTopSeller bool
	severity    domain.Severity
}

// Execute runs the stock-out risk analysis and returns at most one risk
// insight plus an optional data-sufficiency insight.
func (c *StockOutRiskCheck) Execute(bundle *features.Bundle, ctx industry.Context) ([]domain.Insight, error) {
	if bundle == nil || bundle.Table == nil {
		return nil, nil
	}

	// A snapshot without product or quantity columns has nothing to assess.
	if !bundle.Table.HasColumn("product_id") {
		return nil, nil
	}
	if !bundle.Table.HasColumn("quantity") && !bundle.Table.HasColumn("starting_quantity") {
		return nil, nil
	}
	if len(bundle.Products) == 0 {
		return nil, nil
	}

	if _, err := ctx.Threshold("min_sales_days_required"); err != nil {
		return nil, err
	}

	totalProducts := len(bundle.Products)
	var insights []domain.Insight

	// Data sufficiency gate: without actual sales for at least half the
	// products, say so before reporting any risk, so a thin dataset never
	// reads as a clean bill of health.
	if !bundle.HasSalesData || float64(bundle.ProductsWithSales) < 0.5*float64(totalProducts) {
		insights = append(insights, c.insufficientDataInsight(bundle.HasSalesData, bundle.ProductsWithSales, totalProducts))
	}

	assessments := c.assess(bundle, ctx)
	c.markTopSellers(bundle, ctx, assessments)

	criticalDays, err := ctx.Threshold("critical_days_of_stock")
	if err != nil {
		return nil, err
	}
	mediumDays, err := ctx.Threshold("medium_days_of_stock")
	if err != nil {
		return nil, err
	}

	var atRisk []*assessment
	for i := range assessments {
		if assessments[i].daysOfStock < mediumDays {
			atRisk = append(atRisk, &assessments[i])
		}
	}
	if len(atRisk) == 0 {
		return insights, nil
	}

	for _, a := range atRisk {
		a.severity = severityFor(a.daysOfStock, a.isTopSeller, criticalDays, mediumDays)
	}

	insights = append(insights, c.riskInsight(atRisk, totalProducts))
	return insights, nil
}

// assess computes daily sales and days-of-stock for every product. Source
// precedence: actual/explicit daily sales, then a provided sales-per-day
// column, then provided weekly sales divided by 7, then the industry-norm
// estimate.
func (c *StockOutRiskCheck) assess(bundle *features.Bundle, ctx industry.Context) []assessment {
	table := bundle.Table
	hasDaily := bundle.HasSalesData || table.HasColumn("daily_sales")
	hasPerDay := table.HasColumn("sales_per_day")
	hasWeekly := table.HasColumn("weekly_sales", "sales_per_week")

	out := make([]assessment, 0, len(bundle.Products))
	for _, p := range bundle.Products {
		a := assessment{product: p}

		switch {
		case hasDaily:
			if p.DailySales != nil {
				a.dailySales = math.Max(*p.DailySales, minDailySales)
				a.source = sourceActualSales
				a.confidence = confidenceHigh
			} else {
				a.dailySales = estimateDailySales(p.Quantity, ctx)
				a.source = sourceEstimated
				a.confidence = confidenceLow
			}
		case hasPerDay:
			a.source = sourceProvided
			a.confidence = confidenceHigh
			if p.SalesPerDay != nil {
				a.dailySales = math.Max(*p.SalesPerDay, minDailySales)
			}
		case hasWeekly:
			a.source = sourceProvided
			a.confidence = confidenceHigh
			if p.WeeklySales != nil {
				a.dailySales = math.Max(*p.WeeklySales/7, minDailySales)
			}
		default:
			a.dailySales = estimateDailySales(p.Quantity, ctx)
			a.source = sourceEstimated
			a.confidence = confidenceLow
		}

		if a.dailySales > 0 {
			a.daysOfStock = p.Quantity / a.dailySales
		} else {
			// Provided-rate column with a null cell: no rate, no assessment.
			a.daysOfStock = math.Inf(1)
		}
		out = append(out, a)
	}
	return out
}

// estimateDailySales approximates velocity from the industry's typical
// annual stock turnover: if stock turns over N times per year, daily sales
// are roughly quantity / (365/N). Coarse, but better than withholding an
// assessment; callers tag the result estimated/low.
func estimateDailySales(quantity float64, ctx industry.Context) float64 {
	turnover := industry.NormOr(ctx, "typical_stock_turnover", 12)
	if turnover <= 0 {
		turnover = 12
	}
	return math.Max(quantity/(365/turnover), minDailySales)
}

// markTopSellers flags products whose revenue proxy (quantity x price,
// current stock standing in for historical sales) is at or above the
// nearest-rank quantile cut. Without both quantity and price columns no
// product is marked.
func (c *StockOutRiskCheck) markTopSellers(bundle *features.Bundle, ctx industry.Context, assessments []assessment) {
	table := bundle.Table
	if !table.HasColumn("price") {
		return
	}
	if !table.HasColumn("quantity") && !table.HasColumn("starting_quantity") {
		return
	}

	percentile := industry.ThresholdOr(ctx, "top_seller_revenue_percentile", 0.3)

	proxies := make([]float64, 0, len(assessments))
	for i := range assessments {
		if assessments[i].product.Price != nil {
			proxies = append(proxies, assessments[i].product.Quantity**assessments[i].product.Price)
		}
	}
	threshold, ok := nearestRankQuantile(proxies, 1-percentile)
	if !ok {
		return
	}

	for i := range assessments {
		p := assessments[i].product
		if p.Price != nil && p.Quantity**p.Price >= threshold {
			assessments[i].isTopSeller = true
		}
	}
}

// nearestRankQuantile returns the q-quantile of values using the
// nearest-rank method: the element at rank ceil(q*n) of the ascending sort.
// Small snapshots are sensitive to the quantile method; nearest-rank keeps
// the cut on an observed value so "top 30% of 2 products" is exactly one
// product.
func nearestRankQuantile(values []float64, q float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(q * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1], true
}

// severityFor is a pure function of days-of-stock and product importance
// against the two context thresholds.
func severityFor(daysOfStock float64, isTopSeller bool, criticalDays, mediumDays float64) domain.Severity {
	switch {
	case daysOfStock < criticalDays:
		if isTopSeller {
			return domain.SeverityCritical
		}
		return domain.SeverityHigh
	case daysOfStock < mediumDays:
		if isTopSeller {
			return domain.SeverityHigh
		}
		return domain.SeverityMedium
	default:
		if isTopSeller {
			return domain.SeverityMedium
		}
		return domain.SeverityLow
	}
}

// timeframe phrases a severity as the window in which the product may run
// out, keeping narrative and severity aligned.
func timeframe(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return "this week"
	case domain.SeverityHigh:
		return "in the next 1-2 weeks"
	default:
		return "in the next few weeks"
	}
}

// insufficientDataInsight describes missing or partial sales coverage, with
// a distinct message for "no sales data at all" versus partial coverage.
func (c *StockOutRiskCheck) insufficientDataInsight(hasSalesData bool, withSales, total int) domain.Insight {
	var description, recommendation string
	if !hasSalesData {
		description = "Sales data was not provided in your file. Stock-out risk assessments are " +
			"based on estimated sales patterns rather than your actual sales history. " +
			"This reduces the accuracy of timing predictions. " +
			"To improve accuracy, include sales rows (with date and units_sold) in your CSV file."
		recommendation = "Add sales rows to your CSV file with date, product_id, and units_sold columns. " +
			"This allows the system to calculate actual sales rates for more precise " +
			"stock-out predictions. Sales should represent activity after your inventory snapshot date."
	} else {
		coveragePct := float64(withSales) / float64(total) * 100
		description = fmt.Sprintf(
			"Sales data is available for only %d of %d products (%.0f%% coverage). "+
				"Stock-out assessments for products without sales data rely on industry "+
				"estimates and may be less accurate.",
			withSales, total, coveragePct)
		recommendation = "Consider adding sales rows for all products in your CSV file. " +
			"More complete sales data improves the accuracy of stock-out predictions."
	}

	coverage := 0.0
	if total > 0 {
		coverage = float64(withSales) / float64(total) * 100
	}

	metrics := domain.NewFields().
		Set("has_sales_data", hasSalesData).
		Set("products_with_sales_data", withSales).
		Set("total_products", total).
		Set("coverage_percentage", coverage)

	metadata := domain.NewFields().
		Set("data_quality_issue", true).
		Set("data_coverage", "incomplete")

	return domain.Insight{
		CheckName:      c.Name(),
		Title:          "Data Coverage: Sales History Missing",
		Description:    description,
		Severity:       domain.SeverityInfo,
		Type:           domain.InsightTypeAnomaly,
		Metrics:        metrics,
		Recommendation: recommendation,
		Metadata:       metadata,
		Timestamp:      time.Now(),
	}
}

// riskInsight synthesizes the single stock-out risk insight from the at-risk
// set: a tiered narrative, an action-oriented recommendation, a confidence
// note, and the metrics and metadata the report layer relies on.
func (c *StockOutRiskCheck) riskInsight(atRisk []*assessment, totalProducts int) domain.Insight {
	byDays := func(list []*assessment) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].daysOfStock < list[j].daysOfStock
		})
	}

	var critical, high, medium []*assessment
	for _, a := range atRisk {
		switch a.severity {
		case domain.SeverityCritical:
			critical = append(critical, a)
		case domain.SeverityHigh:
			high = append(high, a)
		case domain.SeverityMedium:
			medium = append(medium, a)
		}
	}
	byDays(critical)
	byDays(high)
	byDays(medium)

	overall := domain.SeverityLow
	switch {
	case len(critical) > 0:
		overall = domain.SeverityCritical
	case len(high) > 0:
		overall = domain.SeverityHigh
	case len(medium) > 0:
		overall = domain.SeverityMedium
	}

	topSellersAtRisk := 0
	for _, a := range atRisk {
		if a.isTopSeller {
			topSellersAtRisk++
		}
	}

	var parts []string
	runOutPhrase := func(a *assessment, severity domain.Severity) string {
		return fmt.Sprintf("%s (may run out %s at the current rate of sales)",
			a.product.Name, timeframe(severity))
	}

	if len(critical) > 0 {
		names := make([]string, 0, len(critical))
		for _, a := range critical {
			names = append(names, runOutPhrase(a, domain.SeverityCritical))
		}
		parts = append(parts,
			"**Immediate attention:**",
			strings.Join(names, ", "),
			"",
			"These products may run out this week at the current rate of sales. "+
				"This could result in missed sales and customer dissatisfaction.",
			"")
	}

	if len(high) > 0 {
		names := make([]string, 0, len(high))
		for _, a := range high {
			names = append(names, runOutPhrase(a, domain.SeverityHigh))
		}
		parts = append(parts,
			"**Action needed soon:**",
			strings.Join(names, ", "),
			"",
			"These products should be reordered soon to avoid future shortages.",
			"")
	}

	if len(medium) > 0 {
		names := make([]string, 0, len(medium))
		for _, a := range medium {
			names = append(names, a.product.Name)
		}
		parts = append(parts,
			"**Monitor:**",
			strings.Join(names, ", "),
			"",
			"Stock levels should be monitored for these products.",
			"")
	}

	description := strings.TrimSpace(strings.Join(parts, "\n"))

	var rec []string
	if len(critical) > 0 {
		rec = append(rec, "Prioritize reordering items that may run out this week at the current rate of sales. ")
	}
	if len(high) > 0 {
		rec = append(rec, "Plan reorders soon for products that may run out in the next 1-2 weeks at the current rate of sales. ")
	}
	if len(medium) > 0 && len(critical) == 0 && len(high) == 0 {
		rec = append(rec, "Monitor stock levels and plan reorders before products reach critical levels. ")
	}
	if topSellersAtRisk > 0 {
		rec = append(rec, "Pay special attention to top-selling products to avoid revenue loss.")
	}
	recommendation := strings.TrimSpace(strings.Join(rec, ""))

	hasActual := false
	estimatedCount := 0
	for _, a := range atRisk {
		switch a.source {
		case sourceActualSales:
			hasActual = true
		case sourceEstimated:
			estimatedCount++
		}
	}

	var confidenceNote string
	switch {
	case hasActual && estimatedCount == 0:
		confidenceNote = "This assessment is based on recent sales at the current rate of sales and may change if demand shifts."
	case hasActual && estimatedCount > 0:
		plural := ""
		if estimatedCount > 1 {
			plural = "s"
		}
		confidenceNote = fmt.Sprintf(
			"This assessment uses actual sales data where available. "+
				"For %d product%s without sales history, estimates are based on typical "+
				"industry patterns at the current rate of sales and may be less accurate.",
			estimatedCount, plural)
	default:
		confidenceNote = "This assessment is based on estimated sales patterns at the current rate of sales. " +
			"Providing actual sales data will significantly improve accuracy. " +
			"Stock-out timing may vary if demand changes."
	}

	title := riskTitle(len(critical), len(high), len(medium), len(atRisk))

	minDays := math.Inf(1)
	sumDays := 0.0
	for _, a := range atRisk {
		if a.daysOfStock < minDays {
			minDays = a.daysOfStock
		}
		sumDays += a.daysOfStock
	}
	avgDays := sumDays / float64(len(atRisk))

	metrics := domain.NewFields().
		Set("at_risk_count", len(atRisk)).
		Set("critical_count", len(critical)).
		Set("high_count", len(high)).
		Set("medium_count", len(medium)).
		Set("top_sellers_at_risk", topSellersAtRisk).
		Set("min_days_of_stock", minDays).
		Set("avg_days_of_stock", avgDays).
		Set("total_products", totalProducts)

	atRiskIDs := make([]string, 0, 20)
	for _, a := range atRisk {
		if len(atRiskIDs) == 20 {
			break
		}
		atRiskIDs = append(atRiskIDs, a.product.ID)
	}
	criticalIDs := make([]string, 0, len(critical))
	for _, a := range critical {
		criticalIDs = append(criticalIDs, a.product.ID)
	}

	metadata := domain.NewFields().
		Set("at_risk_product_ids", atRiskIDs).
		Set("sales_velocity_estimated", estimatedCount > 0).
		Set("critical_product_ids", criticalIDs)

	return domain.Insight{
		CheckName:      c.Name(),
		Title:          title,
		Description:    description + "\n\n" + confidenceNote,
		Severity:       overall,
		Type:           domain.InsightTypeRisk,
		Metrics:        metrics,
		Recommendation: recommendation,
		Metadata:       metadata,
		Timestamp:      time.Now(),
	}
}

func riskTitle(criticalCount, highCount, mediumCount, atRiskCount int) string {
	label := func(n int, phrase string) string {
		if n == 1 {
			return fmt.Sprintf("Stock-Out Risk: 1 product %s", phrase)
		}
		return fmt.Sprintf("Stock-Out Risk: %d products %s", n, phrase)
	}
	switch {
	case criticalCount > 0:
		if criticalCount == 1 {
			return "Stock-Out Risk: 1 product needs immediate attention"
		}
		return fmt.Sprintf("Stock-Out Risk: %d products need immediate attention", criticalCount)
	case highCount > 0:
		if highCount == 1 {
			return "Stock-Out Risk: 1 product needs action soon"
		}
		return fmt.Sprintf("Stock-Out Risk: %d products need action soon", highCount)
	case mediumCount > 0:
		return label(mediumCount, "to monitor")
	default:
		if atRiskCount == 1 {
			return "Stock-Out Risk: 1 product needs attention"
		}
		return fmt.Sprintf("Stock-Out Risk: %d products need attention", atRiskCount)
	}
}
