package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleDashboard serves the full page. Invalid query parameters fall back to
// the default selection rather than failing the page.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	c, err := parseCriteria(r)
	if err != nil {
		h.logger.DebugContext(ctx, "ignoring invalid criteria", "error", err)
		c = models.FilterCriteria{}
	}

	vm := h.dashboard.Render(ctx, c)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := templates.Page(vm).Render(ctx, w); err != nil {
		h.logger.ErrorContext(ctx, "render page", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
