package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "airmarket/internal/errors"
	"airmarket/internal/pipeline"
	api "airmarket/pkg/contracts/api/v1"
	"airmarket/pkg/contracts/domain"
)

// Response statuses
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
)

// FlightsResponse is the body of GET /api/flights
type FlightsResponse struct {
	Status        string                `json:"status"`
	SnapshotID    string                `json:"snapshot_id"`
	Source        string                `json:"source"`
	BaselineCount int                   `json:"baseline_count"`
	Count         int                   `json:"count"`
	Records       []domain.FlightRecord `json:"records"`
	Steps         []domain.FilterStep   `json:"steps"`
	Guidance      []string              `json:"guidance,omitempty"`
}

// InsightsResponse is the body of GET /api/insights
type InsightsResponse struct {
	Status    string                 `json:"status"`
	Source    string                 `json:"source"`
	Count     int                    `json:"count"`
	Insights  domain.InsightSet      `json:"insights"`
	Routes    []domain.RouteSummary  `json:"routes"`
	Daily     []domain.DailySummary  `json:"daily"`
	Demand    *domain.DemandAnalysis `json:"demand,omitempty"`
	Revenue   domain.RevenueAnalysis `json:"revenue"`
	Narrative string                 `json:"narrative"`
	Guidance  []string               `json:"guidance,omitempty"`
}

// EmptyResponse is returned when filters remove every flight
type EmptyResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Guidance []string `json:"guidance"`
}

// MarketHandler serves flights, insights, narratives, filter options and
// report downloads
type MarketHandler struct {
	service      MarketServiceInterface
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(service MarketServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MarketHandler {
	return &MarketHandler{
		service:      service,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "market_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the market routes
func (h *MarketHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/flights", h.GetFlights)
		r.Get("/insights", h.GetInsights)
		r.Get("/narrative", h.GetNarrative)
		r.Get("/filters/options", h.GetFilterOptions)
		r.Post("/refresh", h.Refresh)
	})

	r.Get("/export/{format}", h.Export)

	return r
}

// criteria parses and validates the filter query parameters
func (h *MarketHandler) criteria(r *http.Request) (domain.FilterCriteria, error) {
	return parseCriteria(h.validate, r)
}

// parseCriteria reads the filter query parameters shared by the market and
// report endpoints
func parseCriteria(validate *validator.Validate, r *http.Request) (domain.FilterCriteria, error) {
	query := api.FlightQueryFromValues(r.URL.Query())

	if err := validate.Struct(query); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]apierrors.ValidationError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apierrors.ValidationError{
					Field:   fe.Field(),
					Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
				})
			}
			return domain.FilterCriteria{}, apierrors.NewValidationErrors(fields)
		}
		return domain.FilterCriteria{}, apierrors.InvalidParameter("query", err)
	}

	criteria, err := query.ToCriteria()
	if err != nil {
		return domain.FilterCriteria{}, apierrors.InvalidParameter("query", err)
	}
	return criteria, nil
}

// GetFlights handles GET /api/flights
func (h *MarketHandler) GetFlights(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteria(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view := analysis.View
	h.logFiltered(r, view)
	render.JSON(w, r, FlightsResponse{
		Status:        status(view),
		SnapshotID:    view.SnapshotID,
		Source:        view.Source,
		BaselineCount: view.BaselineCount,
		Count:         len(view.Records),
		Records:       view.Records,
		Steps:         view.Steps,
		Guidance:      view.Guidance,
	})
}

// GetInsights handles GET /api/insights
func (h *MarketHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteria(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view := analysis.View
	h.logFiltered(r, view)
	render.JSON(w, r, InsightsResponse{
		Status:    status(view),
		Source:    view.Source,
		Count:     len(view.Records),
		Insights:  view.Insights,
		Routes:    analysis.Routes,
		Daily:     analysis.Daily,
		Demand:    analysis.Demand,
		Revenue:   analysis.Revenue,
		Narrative: analysis.Narrative,
		Guidance:  view.Guidance,
	})
}

// GetNarrative handles GET /api/narrative
func (h *MarketHandler) GetNarrative(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteria(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Narrative(r.Context(), criteria)
	if err != nil {
		if h.renderEmpty(w, r, err) {
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// GetFilterOptions handles GET /api/filters/options
func (h *MarketHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// Refresh handles POST /api/refresh
func (h *MarketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Export handles GET /api/export/{format}
func (h *MarketHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	criteria, err := h.criteria(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Export(r.Context(), criteria, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("format", format),
		slog.String("filename", result.Filename),
		slog.Int("records", result.Records),
		slog.Int("bytes", len(result.Data)))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Record-Count", strconv.Itoa(result.Records))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write report body", slog.String("error", err.Error()))
	}
}

// renderEmpty writes a 200 "empty" response for EMPTY_FILTER_RESULT errors
// and reports whether it did
func (h *MarketHandler) renderEmpty(w http.ResponseWriter, r *http.Request, err error) bool {
	var appErr *apierrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apierrors.ErrTypeEmptyFilterResult {
		return false
	}

	guidance, _ := appErr.Context["guidance"].([]string)
	render.JSON(w, r, EmptyResponse{
		Status:   StatusEmpty,
		Message:  appErr.Message,
		Guidance: guidance,
	})
	return true
}

func (h *MarketHandler) logFiltered(r *http.Request, view *pipeline.View) {
	h.logger.InfoContext(r.Context(), "flights filtered",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("snapshot_id", view.SnapshotID),
		slog.Int("baseline", view.BaselineCount),
		slog.Int("remaining", len(view.Records)))
}

func status(view *pipeline.View) string {
	if view.Empty() {
		return StatusEmpty
	}
	return StatusOK
}
