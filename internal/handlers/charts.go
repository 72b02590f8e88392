package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/aggregate"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/charts"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/errors"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/filter"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

var chartColumns = map[string]string{
	models.ColumnUnemploymentRate:        "Unemployment Rate (%)",
	models.ColumnLabourParticipationRate: "Labour Participation Rate (%)",
	models.ColumnEstimatedEmployed:       "Estimated Employed",
}

type ChartHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewChartHandlers(dashboard *services.Dashboard, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleTrend plots one column of the selected region over time.
func (h *ChartHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}
	column := r.URL.Query().Get("column")
	if column == "" {
		column = models.ColumnUnemploymentRate
	}
	label, ok := chartColumns[column]
	if !ok {
		errors.WriteError(r.Context(), w, h.logger, errors.ValidationFields(map[string]string{
			"column": "must be one of " + strings.Join(chartColumnNames(), ", "),
		}))
		return
	}

	sel, err := h.dashboard.Select(r.Context(), c)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}
	if sel.Selected.Empty() {
		errors.WriteError(r.Context(), w, h.logger, dataset.ErrEmptyView)
		return
	}

	series, err := aggregate.Series(sel.Selected, column)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	h.writePNG(w, r, charts.Chart{
		Title:  fmt.Sprintf("%s Trend - %s", label, sel.Criteria.Region),
		YLabel: label,
	}, series)
}

// HandleCompare plots the unemployment rate of the selected region and every
// compared region on one chart.
func (h *ChartHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	sel, err := h.dashboard.Select(r.Context(), c)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	var series []models.Series
	for _, region := range sel.Criteria.Regions() {
		v := filter.ByRegion(sel.Comparison, region)
		if v.Empty() {
			continue
		}
		s, err := aggregate.Series(v, models.ColumnUnemploymentRate)
		if err != nil {
			errors.WriteError(r.Context(), w, h.logger, err)
			return
		}
		s.Name = region
		series = append(series, s)
	}
	if len(series) == 0 {
		errors.WriteError(r.Context(), w, h.logger, dataset.ErrEmptyView)
		return
	}

	h.writePNG(w, r, charts.Chart{
		Title:  "Unemployment Rate Comparison",
		YLabel: chartColumns[models.ColumnUnemploymentRate],
	}, series...)
}

func (h *ChartHandlers) writePNG(w http.ResponseWriter, r *http.Request, c charts.Chart, series ...models.Series) {
	var buf bytes.Buffer
	if err := charts.Line(&buf, c, series...); err != nil {
		errors.WriteError(r.Context(), w, h.logger, errors.InternalWrap(err, "Failed to render chart"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", cacheControl)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "write chart", "error", err)
	}
}

// chartColumnNames lists the columns accepted by HandleTrend.
func chartColumnNames() []string {
	names := make([]string, 0, len(chartColumns))
	for name := range chartColumns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
