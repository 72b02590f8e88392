package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/errors"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/export"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

type DownloadHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewDownloadHandlers(dashboard *services.Dashboard, logger *slog.Logger) *DownloadHandlers {
	return &DownloadHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *DownloadHandlers) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "csv", export.ContentTypeCSV, export.WriteCSV)
}

func (h *DownloadHandlers) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "xlsx", export.ContentTypeXLSX, func(w io.Writer, v dataset.View) error {
		return export.WriteXLSX(w, v, export.DefaultSheet)
	})
}

// serve writes the selected region's rows as an attachment. The file is
// built in memory first so a failure can still be reported as JSON.
func (h *DownloadHandlers) serve(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, dataset.View) error) {
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

	var buf bytes.Buffer
	if err := write(&buf, sel.Selected); err != nil {
		errors.WriteError(r.Context(), w, h.logger, errors.InternalWrap(err, "Failed to build export"))
		return
	}

	name := export.FileName(sel.Criteria.Region, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "write export", "file", name, "error", err)
	}
}
