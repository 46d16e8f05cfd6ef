package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"morsel-dashboard/internal/analytics"
	"morsel-dashboard/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestService() *analytics.Service {
	s := analytics.NewService()
	s.SetData([]models.NormalizedRecord{
		{
			Sales:  decimal.NewFromInt(300),
			Date:   time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC),
			Region: "north",
		},
		{
			Sales:  decimal.NewFromInt(150),
			Date:   time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC),
			Region: "south",
		},
		{
			Sales:  decimal.NewFromInt(500),
			Date:   time.Date(2021, 1, 20, 0, 0, 0, 0, time.UTC),
			Region: "north",
		},
	})
	return s
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !env.Success {
		t.Error("expected success=true")
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	service := createTestService()
	handlers := NewAPIHandlers(service, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.analytics != service {
		t.Error("NewAPIHandlers() should set analytics field")
	}
}

func TestAPIHandlers_HandleDailySales(t *testing.T) {
	handlers := NewAPIHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/daily-sales", nil)
	w := httptest.NewRecorder()

	handlers.HandleDailySales(w, req)

	env := decodeEnvelope(t, w)

	var view models.RegionView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("failed to decode region view: %v", err)
	}

	if view.Region != analytics.RegionAll {
		t.Errorf("expected default region %q, got %q", analytics.RegionAll, view.Region)
	}
	if len(view.Chart.Dates) != 2 {
		t.Fatalf("expected 2 chart points, got %d", len(view.Chart.Dates))
	}
	if view.Chart.Sales[0] != 450 {
		t.Errorf("expected day one total 450, got %v", view.Chart.Sales[0])
	}
	if !view.StatsDefined {
		t.Error("stats should be defined")
	}
}

func TestAPIHandlers_HandleDailySales_RegionFilter(t *testing.T) {
	handlers := NewAPIHandlers(createTestService(), testLogger())

	tests := []struct {
		region     string
		wantPoints int
	}{
		{"north", 2},
		{"south", 1},
		{"offworld", 0}, // unknown regions are empty, not an error
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/daily-sales?region="+tt.region, nil)
			w := httptest.NewRecorder()

			handlers.HandleDailySales(w, req)

			env := decodeEnvelope(t, w)
			var view models.RegionView
			if err := json.Unmarshal(env.Data, &view); err != nil {
				t.Fatal(err)
			}
			if len(view.Chart.Dates) != tt.wantPoints {
				t.Errorf("expected %d points, got %d", tt.wantPoints, len(view.Chart.Dates))
			}
		})
	}
}

func TestAPIHandlers_HandleRegions(t *testing.T) {
	handlers := NewAPIHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/regions", nil)
	w := httptest.NewRecorder()

	handlers.HandleRegions(w, req)

	env := decodeEnvelope(t, w)
	var regions []string
	if err := json.Unmarshal(env.Data, &regions); err != nil {
		t.Fatal(err)
	}

	want := []string{"all", "north", "south", "east", "west"}
	if len(regions) != len(want) {
		t.Fatalf("expected %d regions, got %v", len(want), regions)
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Errorf("expected regions %v, got %v", want, regions)
			break
		}
	}
}

func TestAPIHandlers_HandlePriceModel(t *testing.T) {
	handlers := NewAPIHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/price-model", nil)
	w := httptest.NewRecorder()

	handlers.HandlePriceModel(w, req)

	env := decodeEnvelope(t, w)
	var model map[string]any
	if err := json.Unmarshal(env.Data, &model); err != nil {
		t.Fatal(err)
	}

	if model["cutover_date"] != "2021-01-15" {
		t.Errorf("expected cutover 2021-01-15, got %v", model["cutover_date"])
	}
	if model["price_before"] != 3.0 || model["price_after"] != 5.0 {
		t.Errorf("unexpected price model %v", model)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	env := decodeEnvelope(t, w)
	var health map[string]string
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected healthy status, got %q", health["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	env := decodeEnvelope(t, w)
	var stats map[string]any
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats["record_count"] != float64(3) {
		t.Errorf("expected record_count 3, got %v", stats["record_count"])
	}
}
