package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/trogers1052/opportunity-radar/internal/detail"
	"github.com/trogers1052/opportunity-radar/internal/logger"
	"github.com/trogers1052/opportunity-radar/internal/models"
	"github.com/trogers1052/opportunity-radar/internal/radar"
	"github.com/trogers1052/opportunity-radar/internal/table"
	"github.com/trogers1052/opportunity-radar/internal/web"
)

// HistoryStore reads archived observations of a ticker
type HistoryStore interface {
	TickerHistory(ctx context.Context, ticker string, limit int) ([]models.TickerHistoryPoint, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	radar    *radar.Controller
	builder  *detail.Builder
	renderer *web.Renderer
	history  HistoryStore
	logger   *zap.Logger
}

// NewHandler creates a new Handler. history may be nil when the archive is disabled.
func NewHandler(ctrl *radar.Controller, builder *detail.Builder, history HistoryStore, log *zap.Logger) *Handler {
	if builder == nil {
		builder = &detail.Builder{}
	}
	return &Handler{
		radar:    ctrl,
		builder:  builder,
		renderer: web.NewRenderer(),
		history:  history,
		logger:   logger.OrNop(log),
	}
}

// Dashboard handles GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state := web.ParseViewState(r.URL.Query())
	page := web.BuildPage(h.radar.Records(), h.radar.Status(), state, h.builder)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Render(w, page); err != nil {
		h.logger.Error("failed to render dashboard", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// RefreshPage handles POST /refresh from the page's refresh control.
// The load is detached from the request so a client disconnect cannot abort it.
func (h *Handler) RefreshPage(w http.ResponseWriter, r *http.Request) {
	if err := h.radar.Refresh(context.WithoutCancel(r.Context())); err != nil {
		// The button is disabled while busy; a stale page may still post.
		h.logger.Info("page refresh rejected", zap.Error(err))
	}
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// safeReturn only allows redirects back to the dashboard
func safeReturn(target string) string {
	if !strings.HasPrefix(target, "/?") {
		return "/"
	}
	return target
}

// GetStatus handles GET /api/v1/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.radar.Status())
}

// ListOpportunities handles GET /api/v1/opportunities
func (h *Handler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := table.ParseFilter(q.Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	field, err := table.ParseSortField(q.Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dir, err := table.ParseSortDirection(q.Get("dir"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records := table.Apply(h.radar.Records(), filter, table.SortState{Field: field, Direction: dir})
	respondJSON(w, http.StatusOK, map[string]any{
		"filter":        filter,
		"sort":          field,
		"dir":           dir,
		"count":         len(records),
		"count_label":   table.CountLabel(len(records)),
		"opportunities": records,
	})
}

// GetOpportunity handles GET /api/v1/opportunities/{ticker}
func (h *Handler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	rec, err := h.radar.Lookup(ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"opportunity": rec,
		"detail":      h.builder.Build(&rec),
	})
}

// GetHistory handles GET /api/v1/opportunities/{ticker}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "snapshot archive is disabled", http.StatusNotFound)
		return
	}

	ticker := mux.Vars(r)["ticker"]
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := h.history.TickerHistory(r.Context(), ticker, limit)
	if err != nil {
		h.logger.Error("failed to read ticker history", zap.String("ticker", ticker), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Refresh handles POST /api/v1/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.radar.RefreshAsync(r.Context())
	switch {
	case errors.Is(err, radar.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, http.StatusAccepted, h.radar.Status())
}

// GetSelection handles GET /api/v1/selection
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.radar.Selected()
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"selected": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"selected": h.builder.Build(&rec)})
}

// SetSelection handles PUT /api/v1/selection. The body names either a ticker or a
// row index in the table as ordered by filter, sort and dir.
func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker string `json:"ticker"`
		Row    *int   `json:"row"`
		Filter string `json:"filter"`
		Sort   string `json:"sort"`
		Dir    string `json:"dir"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Row != nil {
		h.selectRow(w, *req.Row, req.Filter, req.Sort, req.Dir)
		return
	}

	if req.Ticker == "" {
		http.Error(w, "ticker or row is required", http.StatusBadRequest)
		return
	}

	rec, err := h.radar.Select(req.Ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"selected": h.builder.Build(&rec)})
}

// selectRow clicks row i of the table view, which selects through the controller
func (h *Handler) selectRow(w http.ResponseWriter, i int, filterParam, sortParam, dirParam string) {
	filter, err := table.ParseFilter(filterParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	field, err := table.ParseSortField(sortParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dir, err := table.ParseSortDirection(dirParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var clicked *models.OpportunityRecord
	view := table.NewView(h.radar.Records(), filter, func(rec models.OpportunityRecord) {
		h.radar.SelectRecord(rec)
		clicked = &rec
	})
	view.Sort = table.SortState{Field: field, Direction: dir}

	if !view.ClickRow(i) {
		http.Error(w, "row out of range", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"selected": h.builder.Build(clicked)})
}

// ClearSelection handles DELETE /api/v1/selection
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.radar.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "state": string(h.radar.State())})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
