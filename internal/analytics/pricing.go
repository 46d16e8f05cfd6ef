package analytics

import (
	"sort"
	"time"

	"morsel-dashboard/internal/models"
)

// PriceChangeReport is the outcome of the standalone price-change
// detection path. Changed distinguishes "one distinct price, nothing to
// report" from a genuinely empty input.
type PriceChangeReport struct {
	Prices  []float64                 `json:"prices"`
	Events  []models.PriceChangeEvent `json:"events"`
	Changed bool                      `json:"changed"`
}

// DetectPriceChanges finds the distinct observed prices and reports one
// event per adjacent pair in ascending order. Prices are deduplicated at
// currency precision (2 decimals) rather than by exact float equality.
func DetectPriceChanges(observations []models.PriceObservation) PriceChangeReport {
	report := PriceChangeReport{Prices: distinctPrices(observations)}

	for i := 0; i+1 < len(report.Prices); i++ {
		from, to := report.Prices[i], report.Prices[i+1]
		event := models.PriceChangeEvent{FromPrice: from, ToPrice: to}
		if from != 0 {
			event.PercentIncrease = (to - from) / from * 100
		}
		report.Events = append(report.Events, event)
	}

	report.Changed = len(report.Events) > 0
	return report
}

// PriceTimeline summarizes when each distinct price was in effect: first
// and last observation date plus observation count, sorted by price.
func PriceTimeline(observations []models.PriceObservation) []models.PriceSpan {
	spans := make(map[float64]*models.PriceSpan)
	for _, obs := range observations {
		price := obs.Price.Round(2).InexactFloat64()
		span, ok := spans[price]
		if !ok {
			spans[price] = &models.PriceSpan{Price: price, First: obs.Date, Last: obs.Date, Count: 1}
			continue
		}
		if obs.Date.Before(span.First) {
			span.First = obs.Date
		}
		if obs.Date.After(span.Last) {
			span.Last = obs.Date
		}
		span.Count++
	}

	out := make([]models.PriceSpan, 0, len(spans))
	for _, span := range spans {
		out = append(out, *span)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

func distinctPrices(observations []models.PriceObservation) []float64 {
	seen := make(map[float64]bool)
	for _, obs := range observations {
		seen[obs.Price.Round(2).InexactFloat64()] = true
	}

	prices := make([]float64, 0, len(seen))
	for price := range seen {
		prices = append(prices, price)
	}
	sort.Float64s(prices)
	return prices
}

// DateRange reports the first and last observation dates, for run
// summaries.
func DateRange(observations []models.PriceObservation) (first, last time.Time) {
	for i, obs := range observations {
		if i == 0 || obs.Date.Before(first) {
			first = obs.Date
		}
		if i == 0 || obs.Date.After(last) {
			last = obs.Date
		}
	}
	return first, last
}
