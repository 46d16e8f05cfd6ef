package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"morsel-dashboard/internal/analytics"
	"morsel-dashboard/internal/errors"
)

const dataCacheControl = "public, max-age=300"

type APIHandlers struct {
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewAPIHandlers(service *analytics.Service, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: service,
		logger:    logger,
	}
}

// HandleDailySales serves the full region view: daily series as parallel
// arrays, comparative stats and the textual summary. An unknown region
// yields an empty series, not an error.
func (h *APIHandlers) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	view := h.analytics.RegionView(region)

	headers := map[string]string{
		"Cache-Control": dataCacheControl,
	}

	errors.WriteSuccessWithHeaders(w, view, headers)
}

// HandleRegions lists the selectable region filter values.
func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	regions := append([]string{analytics.RegionAll}, analytics.Regions...)

	headers := map[string]string{
		"Cache-Control": dataCacheControl,
	}

	errors.WriteSuccessWithHeaders(w, regions, headers)
}

// HandlePriceModel describes the nominal price step function the charts
// annotate. This is the fixed historical model; data-driven detection
// lives in the analyze command, not behind this endpoint.
func (h *APIHandlers) HandlePriceModel(w http.ResponseWriter, r *http.Request) {
	model := map[string]any{
		"cutover_date":     analytics.PriceChangeDate.Format("2006-01-02"),
		"price_before":     analytics.PriceBefore,
		"price_after":      analytics.PriceAfter,
		"percent_increase": (analytics.PriceAfter - analytics.PriceBefore) / analytics.PriceBefore * 100,
	}

	headers := map[string]string{
		"Cache-Control": dataCacheControl,
	}

	errors.WriteSuccessWithHeaders(w, model, headers)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
