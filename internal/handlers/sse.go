package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"morsel-dashboard/internal/analytics"
	"morsel-dashboard/internal/models"
)

var summaryTemplate = template.Must(template.New("summary").Parse(`
<div id="summary-content">
<p class="summary-line">{{.Summary}}</p>
{{if .StatsDefined}}<ul class="key-findings">
<li>Mean daily sales before the price change: <strong>${{printf "%.2f" .Stats.BeforeMean}}</strong></li>
<li>Mean daily sales after the price change: <strong>${{printf "%.2f" .Stats.AfterMean}}</strong></li>
<li>Change: <strong>{{printf "%+.1f" .Stats.PercentChange}}%</strong></li>
</ul>{{else}}<p class="summary-note">Percent change is undefined for this selection.</p>{{end}}
</div>`))

type SSEHandlers struct {
	analytics *analytics.Service
	logger    *slog.Logger
}

func NewSSEHandlers(service *analytics.Service, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: service,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderSummary(view models.RegionView) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, view)
	return buf.String(), err
}

// HandleDailySales recomputes the region view and pushes it to the page:
// chart data as datastar signals, the summary as a patched fragment. The
// region radio on the dashboard re-invokes this endpoint on every change.
func (h *SSEHandlers) HandleDailySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	region := r.URL.Query().Get("region")
	view := h.analytics.RegionView(region)

	signals, err := json.Marshal(map[string]any{
		"region": view.Region,
		"chart":  view.Chart,
		"stats":  view.Stats,
	})
	if err != nil {
		h.logger.Error("marshal daily sales signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	html, err := h.renderSummary(view)
	if err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
