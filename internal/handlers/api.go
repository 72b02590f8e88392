package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/aggregate"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/errors"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/filter"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

const (
	Version      = "1.0.0"
	cacheControl = "private, max-age=60"
)

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type regionsResponse struct {
	Regions []string   `json:"regions"`
	MinDate *time.Time `json:"min_date,omitempty"`
	MaxDate *time.Time `json:"max_date,omitempty"`
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dashboard.Dataset(r.Context())
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	resp := regionsResponse{Regions: filter.Regions(ds.View)}
	if lo, hi, ok := filter.DateBounds(ds.View); ok {
		resp.MinDate, resp.MaxDate = &lo, &hi
	}

	errors.WriteSuccessWithHeaders(w, resp, map[string]string{
		"Cache-Control": cacheControl,
	})
}

// HandleView returns the full ViewModel for the requested criteria.
func (h *APIHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	c, err := parseRange(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	vm := h.dashboard.Render(r.Context(), c)
	if !vm.Ready() {
		errors.WriteError(r.Context(), w, h.logger, errors.New(errors.CodeDataUnavailable, vm.Message))
		return
	}

	errors.WriteSuccess(w, vm)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	c, err := parseRange(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}
	column := r.URL.Query().Get("column")
	if column == "" {
		column = models.ColumnUnemploymentRate
	}
	column = dataset.NormalizeColumn(column)

	sel, err := h.dashboard.Select(r.Context(), c)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	stats, err := aggregate.Summarize(sel.Selected, column)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"criteria": sel.Criteria,
		"summary":  stats,
	})
}

// HandleCompare ranks the selected and compared regions by mean
// unemployment rate.
func (h *APIHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	c, err := parseRange(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}
	if len(c.Compare) == 0 {
		errors.WriteError(r.Context(), w, h.logger, errors.ValidationFields(map[string]string{
			"compare": "at least one region is required",
		}))
		return
	}

	sel, err := h.dashboard.Select(r.Context(), c)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}
	if sel.Comparison.Empty() {
		errors.WriteError(r.Context(), w, h.logger, dataset.ErrEmptyView)
		return
	}

	ranking, err := aggregate.GroupMeans(sel.Comparison, models.ColumnRegion, models.ColumnUnemploymentRate)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"criteria": sel.Criteria,
		"notices":  sel.Notices,
		"ranking":  ranking,
	})
}

// HandleHealth reports liveness. A dataset that fails to load degrades the
// data status but keeps the endpoint healthy.
func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	data := models.StatusReady
	if _, err := h.dashboard.Dataset(r.Context()); err != nil {
		data = models.StatusUnavailable
	}

	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats(r.Context()))
}

// HandleReload invalidates the cached dataset and loads it again.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dashboard.Reload(r.Context())
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		"source", ds.Source,
		"rows", ds.Len(),
		"dropped", ds.Dropped,
	)
	errors.WriteSuccess(w, map[string]any{
		"source":       ds.Source,
		"record_count": ds.Len(),
		"rows_dropped": ds.Dropped,
		"loaded_at":    ds.LoadedAt.Format(time.RFC3339),
	})
}
