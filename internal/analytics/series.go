package analytics

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"morsel-dashboard/internal/errors"
	"morsel-dashboard/internal/models"
)

// RegionAll is the sentinel filter value that keeps every record.
const RegionAll = "all"

// Regions are the canonical region names seen in the source data. Any
// other filter value simply matches no records.
var Regions = []string{"north", "south", "east", "west"}

// The nominal price is a fixed step function around the known price
// change of 2021-01-15: $3.00 before, $5.00 at and after. It is a
// constant of the system, never inferred from the data.
const (
	PriceBefore = 3.00
	PriceAfter  = 5.00
)

var PriceChangeDate = time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)

// NominalPrice returns the per-unit price in effect on a date.
func NominalPrice(date time.Time) float64 {
	if date.Before(PriceChangeDate) {
		return PriceBefore
	}
	return PriceAfter
}

// DailySeries groups the records of one region (or all of them) by date
// and sums sales per day. The result is sorted ascending by date and
// contains exactly the distinct dates present in the filtered records:
// missing dates are not zero-filled. An unknown region yields an empty
// series.
func DailySeries(records []models.NormalizedRecord, region string) []models.DailySalesPoint {
	totals := make(map[time.Time]decimal.Decimal)
	for _, rec := range records {
		if region != RegionAll && rec.Region != region {
			continue
		}
		totals[rec.Date] = totals[rec.Date].Add(rec.Sales)
	}

	points := make([]models.DailySalesPoint, 0, len(totals))
	for date, total := range totals {
		points = append(points, models.DailySalesPoint{
			Date:       date,
			TotalSales: total.InexactFloat64(),
			Price:      NominalPrice(date),
		})
	}
	slices.SortFunc(points, func(a, b models.DailySalesPoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

// Compare splits the series at the cutover date and compares mean daily
// sales on each side. An empty partition is reported as mean 0 with its
// empty flag set, which is distinct from a present partition whose mean
// happens to be 0.
//
// The percent change is undefined when the before-mean is zero; that is
// surfaced as a DIVISION_BY_ZERO error, never silently coerced to 0 or
// Inf. The returned stats are still valid in that case, minus the
// percent change.
func Compare(points []models.DailySalesPoint, cutover time.Time) (models.ComparativeStats, error) {
	var beforeSum, afterSum float64
	var beforeN, afterN int
	for _, p := range points {
		if p.Date.Before(cutover) {
			beforeSum += p.TotalSales
			beforeN++
		} else {
			afterSum += p.TotalSales
			afterN++
		}
	}

	stats := models.ComparativeStats{
		BeforeEmpty: beforeN == 0,
		AfterEmpty:  afterN == 0,
	}
	if beforeN > 0 {
		stats.BeforeMean = beforeSum / float64(beforeN)
	}
	if afterN > 0 {
		stats.AfterMean = afterSum / float64(afterN)
	}

	if stats.BeforeMean == 0 {
		return stats, errors.DivisionByZero("percent change undefined: mean daily sales before the cutover is zero")
	}

	stats.PercentChange = (stats.AfterMean - stats.BeforeMean) / stats.BeforeMean * 100
	return stats, nil
}

// Summarize renders the one-line textual summary the dashboard shows for
// a region selection.
func Summarize(region string, points []models.DailySalesPoint, stats models.ComparativeStats, statsErr error) string {
	scope := region
	if region == RegionAll {
		scope = "all regions"
	}

	if len(points) == 0 {
		return fmt.Sprintf("%s: no matching sales records", scope)
	}

	cutover := PriceChangeDate.Format("2006-01-02")
	if statsErr != nil {
		return fmt.Sprintf("%s: %d days of sales; percent change undefined (no sales recorded before the %s price change)",
			scope, len(points), cutover)
	}

	direction := "up"
	if stats.PercentChange < 0 {
		direction = "down"
	}
	return fmt.Sprintf("%s: %d days of sales; mean daily sales $%.2f before the %s price change and $%.2f after (%s %.1f%%)",
		scope, len(points), stats.BeforeMean, cutover, stats.AfterMean, direction, abs(stats.PercentChange))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
