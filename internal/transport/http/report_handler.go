package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "airmarket/internal/errors"
	"airmarket/internal/files"
	"airmarket/internal/services"
)

// ReportEntry is a saved report as listed by GET /api/reports
type ReportEntry struct {
	files.ReportFile
	SizeHuman string `json:"size_human"`
	URL       string `json:"url"`
}

// ReportsResponse is the body of GET /api/reports
type ReportsResponse struct {
	Count   int           `json:"count"`
	Reports []ReportEntry `json:"reports"`
}

// ReportHandler saves reports server side and serves the saved files
type ReportHandler struct {
	service      ReportServiceInterface
	basePath     string
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler. basePath is the URL prefix the
// routes are mounted on and is used to build download links.
func NewReportHandler(service ReportServiceInterface, basePath string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		basePath:     basePath,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.ListReports)
	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/", h.SaveReport)
	r.Get("/{name}", h.DownloadReport)
	return r
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	entries := make([]ReportEntry, len(reports))
	for i, report := range reports {
		entries[i] = h.entry(report)
	}
	render.JSON(w, r, ReportsResponse{Count: len(entries), Reports: entries})
}

// SaveReport handles POST /api/reports?format=...; the remaining query
// parameters are the usual flight filters
func (h *ReportHandler) SaveReport(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(h.validate, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("format", fmt.Errorf("format is required")))
		return
	}

	saved, err := h.service.Save(r.Context(), criteria, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report saved",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("name", saved.Name),
		slog.Int("records", saved.Records))

	entry := h.entry(saved.ReportFile)
	w.Header().Set("Location", entry.URL)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, struct {
		ReportEntry
		Records int `json:"records"`
	}{entry, saved.Records})
}

// DownloadReport handles GET /api/reports/{name}
func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, err := os.Open(report.Path)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", report.Format.MIMEType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Name))
	http.ServeContent(w, r, report.Name, report.ModTime, file)
}

func (h *ReportHandler) entry(report files.ReportFile) ReportEntry {
	return ReportEntry{
		ReportFile: report,
		SizeHuman:  humanize.Bytes(uint64(report.Size)),
		URL:        path.Join(h.basePath, report.Name),
	}
}

var _ ReportServiceInterface = (*services.ReportService)(nil)
