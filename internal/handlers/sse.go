package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/errors"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleDashboard re-renders the dashboard for the current signals and patches
// the controls and every section in place. The resolved criteria are sent back
// as signals so defaults chosen by the server show up in the inputs.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	vm := h.dashboard.Render(r.Context(), c)
	signals, err := templates.Signals(vm.Criteria)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, errors.InternalWrap(err, "Failed to encode signals"))
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.WarnContext(r.Context(), "patch signals", "error", err)
		return
	}

	fragments := append([]templ.Component{templates.Controls(vm)}, templates.Sections(vm)...)
	for _, fragment := range fragments {
		var buf strings.Builder
		if err := fragment.Render(r.Context(), &buf); err != nil {
			h.logger.ErrorContext(r.Context(), "render fragment", "error", err)
			return
		}
		if err := sse.PatchElements(buf.String()); err != nil {
			h.logger.WarnContext(r.Context(), "patch elements", "error", err)
			return
		}
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
