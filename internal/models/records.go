package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one row of a raw daily sales source file. It exists only
// while a source is being ingested.
type RawRecord struct {
	Product  string
	Price    decimal.Decimal
	Quantity int
	Date     time.Time
	Region   string
}

// NormalizedRecord is the minimal projection that survives ingestion:
// the derived sales value, the transaction date and the region. The
// parsed per-unit price is intentionally discarded.
type NormalizedRecord struct {
	Sales  decimal.Decimal
	Date   time.Time
	Region string
}

// PriceObservation pairs an observed per-unit price with the date it was
// seen. Collected during ingestion for the standalone price-change
// analysis, before price is dropped from the normalized output.
type PriceObservation struct {
	Price decimal.Decimal
	Date  time.Time
}

// DailySalesPoint is one aggregated day: total sales across all retained
// records for that date plus the nominal price in effect.
type DailySalesPoint struct {
	Date       time.Time `json:"date"`
	TotalSales float64   `json:"total_sales"`
	Price      float64   `json:"price"`
}

// ComparativeStats compares mean daily sales before and after the price
// change. BeforeEmpty/AfterEmpty distinguish "no days in partition" from
// "partition present with mean exactly 0".
type ComparativeStats struct {
	BeforeMean    float64 `json:"before_mean"`
	AfterMean     float64 `json:"after_mean"`
	PercentChange float64 `json:"percent_change"`
	BeforeEmpty   bool    `json:"before_empty"`
	AfterEmpty    bool    `json:"after_empty"`
}

// PriceChangeEvent is one transition between two adjacent distinct prices
// in a sorted observed-price sequence.
type PriceChangeEvent struct {
	FromPrice       float64 `json:"from_price"`
	ToPrice         float64 `json:"to_price"`
	PercentIncrease float64 `json:"percent_increase"`
}

// PriceSpan summarizes when a distinct price was observed.
type PriceSpan struct {
	Price float64   `json:"price"`
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
	Count int       `json:"count"`
}

// ChartData is the parallel-array form the dashboard consumes.
type ChartData struct {
	Dates  []string  `json:"dates"`
	Sales  []float64 `json:"sales"`
	Prices []float64 `json:"prices"`
}

// RegionView is everything the presentation layer needs for one region
// selection: the chart series, the comparative stats and a one-line
// textual summary. StatsDefined is false when the percent change could
// not be computed (zero or empty before-partition).
type RegionView struct {
	Region       string           `json:"region"`
	Chart        ChartData        `json:"chart"`
	Stats        ComparativeStats `json:"stats"`
	StatsDefined bool             `json:"stats_defined"`
	Summary      string           `json:"summary"`
}
