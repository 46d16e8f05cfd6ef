package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"morsel-dashboard/internal/models"
)

func TestNewSSEHandlers(t *testing.T) {
	service := createTestService()
	logger := testLogger()

	handlers := NewSSEHandlers(service, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != service {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderSummary(t *testing.T) {
	handlers := NewSSEHandlers(createTestService(), testLogger())

	view := models.RegionView{
		Region: "north",
		Stats: models.ComparativeStats{
			BeforeMean:    100,
			AfterMean:     150,
			PercentChange: 50,
		},
		StatsDefined: true,
		Summary:      "north: 2 days of sales",
	}

	html, err := handlers.renderSummary(view)
	if err != nil {
		t.Fatalf("renderSummary() failed: %v", err)
	}

	expectedContent := []string{
		`id="summary-content"`,
		"north: 2 days of sales",
		"$100.00",
		"$150.00",
		"+50.0%",
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderSummary_UndefinedStats(t *testing.T) {
	handlers := NewSSEHandlers(createTestService(), testLogger())

	view := models.RegionView{
		Region:  "offworld",
		Summary: "offworld: no matching sales records",
	}

	html, err := handlers.renderSummary(view)
	if err != nil {
		t.Fatalf("renderSummary() failed: %v", err)
	}

	if !strings.Contains(html, "undefined") {
		t.Errorf("expected undefined-stats note, got %q", html)
	}
	if strings.Contains(html, "key-findings") {
		t.Error("key findings must not render when stats are undefined")
	}
}

func TestSSEHandlers_HandleDailySales(t *testing.T) {
	handlers := NewSSEHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/daily-sales?region=north", nil)
	w := httptest.NewRecorder()

	handlers.HandleDailySales(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected SSE content type, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "summary-content") {
		t.Error("expected summary fragment in SSE stream")
	}
	if !strings.Contains(body, "2021-01-10") {
		t.Error("expected chart dates in patched signals")
	}
	if !strings.Contains(body, `"region":"north"`) {
		t.Error("expected region signal in SSE stream")
	}
}

func TestSSEHandlers_HandleDailySales_EmptyRegion(t *testing.T) {
	handlers := NewSSEHandlers(createTestService(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/daily-sales?region=offworld", nil)
	w := httptest.NewRecorder()

	handlers.HandleDailySales(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "no matching sales records") {
		t.Error("expected empty-selection summary in SSE stream")
	}
}
