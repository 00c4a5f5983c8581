package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"agro-advisory/internal/catalog"
	"agro-advisory/internal/models"
	"agro-advisory/internal/repository"
	"agro-advisory/internal/services"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// AdvisoryHandler handles advisory API endpoints
type AdvisoryHandler struct {
	advisoryService *services.AdvisoryService
	alertService    *services.AlertService
	catalog         *catalog.Catalog
	repo            repository.CatalogRepository
	logger          *logging.StructuredLogger
	metrics         *metrics.Collector
}

// NewAdvisoryHandler creates a new advisory handler
func NewAdvisoryHandler(
	advisoryService *services.AdvisoryService,
	alertService *services.AlertService,
	cat *catalog.Catalog,
	repo repository.CatalogRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AdvisoryHandler {
	return &AdvisoryHandler{
		advisoryService: advisoryService,
		alertService:    alertService,
		catalog:         cat,
		repo:            repo,
		logger:          logger,
		metrics:         metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// GetAdvisory handles GET /api/advisory
func (h *AdvisoryHandler) GetAdvisory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/advisory").Observe(duration.Seconds())
	}()

	district := r.URL.Query().Get("district")
	crop := r.URL.Query().Get("crop")
	dateStr := r.URL.Query().Get("date")

	if district == "" || crop == "" {
		h.sendError(w, r, "district and crop query parameters are required", http.StatusBadRequest)
		return
	}

	var date time.Time
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.sendError(w, r, "invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	report, err := h.advisoryService.GetAdvisory(ctx, district, crop, date)
	if err != nil {
		h.handleAdvisoryError(w, r, "/api/advisory", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/advisory", "GET", "200")
	h.sendJSON(w, report, http.StatusOK)
}

// GetDistricts handles GET /api/districts
func (h *AdvisoryHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest("/api/districts", "GET", "200")
	h.sendJSON(w, h.catalog.Districts(), http.StatusOK)
}

// GetDistrictForecast handles GET /api/districts/{district}/forecast
func (h *AdvisoryHandler) GetDistrictForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/districts/forecast").Observe(duration.Seconds())
	}()

	district := mux.Vars(r)["district"]

	forecast, err := h.advisoryService.GetForecast(ctx, district)
	if err != nil {
		h.handleAdvisoryError(w, r, "/api/districts/forecast", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/districts/forecast", "GET", "200")
	h.sendJSON(w, forecast, http.StatusOK)
}

// GetRules handles GET /api/rules
func (h *AdvisoryHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	crop := r.URL.Query().Get("crop")
	district := r.URL.Query().Get("district")

	rules := h.alertService.RulesFor(crop, district)
	if rules == nil {
		rules = []*models.AdvisoryRule{}
	}

	h.metrics.RecordAPIRequest("/api/rules", "GET", "200")
	h.sendJSON(w, rules, http.StatusOK)
}

// GetPrices handles GET /api/prices
func (h *AdvisoryHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	crop := r.URL.Query().Get("crop")

	if crop != "" {
		price, ok := h.catalog.Price(crop)
		if !ok {
			h.sendError(w, r, "no market price for crop "+crop, http.StatusNotFound)
			return
		}
		h.metrics.RecordAPIRequest("/api/prices", "GET", "200")
		h.sendJSON(w, price, http.StatusOK)
		return
	}

	h.metrics.RecordAPIRequest("/api/prices", "GET", "200")
	h.sendJSON(w, h.catalog.Prices(), http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AdvisoryHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.repo.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_ERROR] Database unreachable", logging.Fields{}, err)
		status["status"] = "degraded"
		status["database"] = "unreachable"
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// handleAdvisoryError maps service errors to HTTP responses: unknown
// districts are 404, invalid parameters 400, everything else 500.
func (h *AdvisoryHandler) handleAdvisoryError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		h.sendError(w, r, notFound.Error(), http.StatusNotFound)
		return
	}

	var validation *models.ValidationError
	if errors.As(err, &validation) {
		h.sendError(w, r, validation.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Error(r.Context(), "[API_ADVISORY_ERROR] Advisory request failed", logging.Fields{
		"endpoint": endpoint,
	}, err)
	h.metrics.RecordAPIError("internal_error", endpoint)
	h.sendError(w, r, "failed to evaluate advisory", http.StatusInternalServerError)
}

// sendJSON sends a JSON response
func (h *AdvisoryHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AdvisoryHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all advisory API routes
func (h *AdvisoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/advisory", h.GetAdvisory).Methods("GET")
	router.HandleFunc("/api/districts", h.GetDistricts).Methods("GET")
	router.HandleFunc("/api/districts/{district}/forecast", h.GetDistrictForecast).Methods("GET")
	router.HandleFunc("/api/rules", h.GetRules).Methods("GET")
	router.HandleFunc("/api/prices", h.GetPrices).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
