package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"morsel-dashboard/internal/errors"
	"morsel-dashboard/internal/ingest"
	"morsel-dashboard/internal/models"
)

// Service holds an immutable snapshot of normalized sales records and
// answers region-scoped aggregation queries against it. Queries never
// re-read the file; the snapshot is replaced wholesale by Load or
// SetData.
type Service struct {
	mu       sync.RWMutex
	records  []models.NormalizedRecord
	loadedAt time.Time
	path     string
	logger   *slog.Logger
}

func NewService() *Service {
	return &Service{logger: slog.Default()}
}

// SetData replaces the snapshot directly. Used by tests and by callers
// that already hold an ingestion result.
func (s *Service) SetData(records []models.NormalizedRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loadedAt = time.Now()
}

// Load reads the normalized CSV artifact into a fresh snapshot, going
// through the gob cache when it is still newer than the file. The cache
// is an optimization only; a stale or unreadable cache falls back to the
// file.
func (s *Service) Load(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.path = path
	s.mu.Unlock()

	if cached, err := s.loadFromCache(path); err == nil && cached.fresh(path) {
		s.mu.Lock()
		s.records = cached.Records
		s.loadedAt = cached.LoadedAt
		s.mu.Unlock()
		s.logger.Info("loaded from cache", "records", len(cached.Records))
		return nil
	}

	start := time.Now()
	records, err := ingest.ReadNormalized(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.Schema("normalized file has no records")
	}

	s.mu.Lock()
	s.records = records
	s.loadedAt = time.Now()
	s.mu.Unlock()

	if err := s.saveToCache(path); err != nil {
		s.logger.Warn("failed to save cache", "error", err)
	}

	s.logger.Info("normalized data loaded",
		"path", path,
		"records", len(records),
		"duration", time.Since(start),
	)
	return nil
}

// Snapshot returns the current record set. Callers treat it as
// read-only.
func (s *Service) Snapshot() []models.NormalizedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// RegionView computes everything the dashboard needs for one region
// selection: chart series, comparative stats and the textual summary.
func (s *Service) RegionView(region string) models.RegionView {
	if region == "" {
		region = RegionAll
	}

	points := DailySeries(s.Snapshot(), region)
	stats, statsErr := Compare(points, PriceChangeDate)

	if stats.BeforeEmpty || stats.AfterEmpty {
		s.logger.Warn("empty partition in comparative stats",
			"region", region,
			"before_empty", stats.BeforeEmpty,
			"after_empty", stats.AfterEmpty,
		)
	}

	view := models.RegionView{
		Region:       region,
		Chart:        chartData(points),
		Stats:        stats,
		StatsDefined: statsErr == nil,
	}
	view.Summary = Summarize(region, points, stats, statsErr)
	return view
}

func chartData(points []models.DailySalesPoint) models.ChartData {
	chart := models.ChartData{
		Dates:  make([]string, len(points)),
		Sales:  make([]float64, len(points)),
		Prices: make([]float64, len(points)),
	}
	for i, p := range points {
		chart.Dates[i] = p.Date.Format("2006-01-02")
		chart.Sales[i] = p.TotalSales
		chart.Prices[i] = p.Price
	}
	return chart
}

// Stats exposes snapshot metadata for the admin endpoint.
func (s *Service) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := make(map[time.Time]bool)
	regions := make(map[string]bool)
	for _, rec := range s.records {
		days[rec.Date] = true
		regions[rec.Region] = true
	}

	return map[string]any{
		"record_count": len(s.records),
		"days":         len(days),
		"regions":      len(regions),
		"loaded_at":    s.loadedAt,
		"source":       s.path,
	}
}
