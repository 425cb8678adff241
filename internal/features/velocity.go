package features

import "time"

// CalculateVelocity computes average daily sales per product from sales
// events.
//
// Temporal alignment: an inventory snapshot taken at a point in time must not
// be explained by sales that predate it, so events dated on or before the
// as-of date are discarded. Events older than the lookback window (measured
// from the as-of date when present, else from now) are discarded too.
//
// The daily rate divides total units by the count of distinct calendar dates
// with sales, so multiple same-day entries do not inflate the denominator.
// Products with no surviving events are absent from the result.
func CalculateVelocity(events []SalesEvent, asOf *time.Time, lookbackDays int, now time.Time) map[string]float64 {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}

	reference := now
	if asOf != nil {
		reference = *asOf
	}
	cutoff := reference.AddDate(0, 0, -lookbackDays)

	totals := make(map[string]float64)
	days := make(map[string]map[string]struct{})

	for _, ev := range events {
		if asOf != nil && !ev.Date.After(*asOf) {
			continue
		}
		if ev.Date.Before(cutoff) {
			continue
		}

		totals[ev.ProductID] += ev.Units
		dayKey := ev.Date.Format("2006-01-02")
		if days[ev.ProductID] == nil {
			days[ev.ProductID] = make(map[string]struct{})
		}
		days[ev.ProductID][dayKey] = struct{}{}
	}

	velocity := make(map[string]float64, len(totals))
	for id, total := range totals {
		distinctDays := len(days[id])
		if distinctDays == 0 {
			continue
		}
		velocity[id] = total / float64(distinctDays)
	}
	return velocity
}
