// Command analyze inspects the observed per-unit prices across the raw
// sources, before ingestion discards them, and reports every detected
// price change. It is independent of the fixed cutover model the
// dashboard annotates.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"morsel-dashboard/internal/analytics"
	"morsel-dashboard/internal/config"
	"morsel-dashboard/internal/ingest"
	"morsel-dashboard/internal/observability"
)

const runTimeout = 60 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := ingest.Run(ctx, logger, ingest.Options{
		Sources: cfg.Data.SourceFiles,
		Product: cfg.Data.TargetProduct,
	})
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	first, last := analytics.DateRange(result.Prices)
	logger.Info("observed price history",
		"records", len(result.Prices),
		"first_date", first.Format("2006-01-02"),
		"last_date", last.Format("2006-01-02"),
	)

	for _, span := range analytics.PriceTimeline(result.Prices) {
		logger.Info("price span",
			"price", span.Price,
			"first", span.First.Format("2006-01-02"),
			"last", span.Last.Format("2006-01-02"),
			"observations", span.Count,
		)
	}

	report := analytics.DetectPriceChanges(result.Prices)
	if !report.Changed {
		logger.Info("no price change detected", "price", report.Prices[0])
		return
	}

	for _, event := range report.Events {
		logger.Info("price increase detected",
			"from", event.FromPrice,
			"to", event.ToPrice,
			"percent_increase", event.PercentIncrease,
		)
	}
}
