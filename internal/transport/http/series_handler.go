package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "oddscli/internal/errors"
)

const (
	defaultLatest = 10
	maxLatest     = 1000
)

// SeriesHandler serves the stored series
type SeriesHandler struct {
	service      SeriesServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(service SeriesServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SeriesHandler {
	return &SeriesHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "series")),
		errorHandler: errorHandler,
	}
}

// Routes returns the series routes. Every route takes an optional ?series= name and
// falls back to the configured series.
func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.ListSeries)
		r.Get("/summary", h.GetSummary)
		r.Get("/latest", h.GetLatest)
		r.Get("/{date}", h.GetByDate)
	})
	r.Get("/export.csv", h.ExportCSV)

	return r
}

func (h *SeriesHandler) seriesName(r *http.Request) string {
	if name := r.URL.Query().Get("series"); name != "" {
		return name
	}
	return h.service.DefaultSeries()
}

// ListSeries handles GET /api/series
func (h *SeriesHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summaries,
		"count":  len(summaries),
	})
}

// GetSummary handles GET /api/series/summary
func (h *SeriesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), h.seriesName(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetLatest handles GET /api/series/latest?n=
func (h *SeriesHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	n := defaultLatest
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxLatest {
			h.errorHandler.HandleError(w, r,
				apierrors.InvalidParameter("n", fmt.Sprintf("must be an integer between 1 and %d", maxLatest)))
			return
		}
		n = parsed
	}

	name := h.seriesName(r)
	series, err := h.service.Latest(r.Context(), name, n)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"series": name,
		"data":   series,
		"count":  len(series),
	})
}

// GetByDate handles GET /api/series/{date}
func (h *SeriesHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	snap, err := h.service.ByDate(r.Context(), h.seriesName(r), date)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snap,
	})
}

// ExportCSV handles GET /api/series/export.csv
func (h *SeriesHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	name := h.seriesName(r)

	// Buffer so a read failure can still be reported as a problem response.
	var buf bytes.Buffer
	rows, err := h.service.WriteCSV(r.Context(), name, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Series exported",
		slog.String("series", name),
		slog.Int("rows", rows))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
