// Command process reads the raw daily sales sources, keeps only the
// target product, normalizes prices, computes sales = price * quantity
// and writes the normalized CSV artifact the dashboard serves.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

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

	if err := ingest.WriteNormalized(cfg.Data.NormalizedFile, result.Records); err != nil {
		logger.Error("failed to write normalized output", "error", err)
		os.Exit(1)
	}

	report := result.Report
	logger.Info("processing complete",
		"output", cfg.Data.NormalizedFile,
		"records", report.RowsRetained,
		"first_date", report.FirstDate.Format("2006-01-02"),
		"last_date", report.LastDate.Format("2006-01-02"),
		"regions", report.Regions,
		"min_sales", report.MinSales,
		"max_sales", report.MaxSales,
	)
}
