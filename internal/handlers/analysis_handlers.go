package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hybrid-energy-platform/internal/analysis"
	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/internal/repository"
	"hybrid-energy-platform/internal/services"
	"hybrid-energy-platform/pkg/logging"
	"hybrid-energy-platform/pkg/metrics"
)

const maxRequestBytes = 1 << 20

// AnalysisHandler serves the analysis and facility endpoints
type AnalysisHandler struct {
	analysis   *services.AnalysisService
	facilities *services.FacilityService
	health     func(ctx context.Context) error
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewAnalysisHandler creates the handler. facilities and health may be nil when the server
// runs without a database.
func NewAnalysisHandler(
	analysisService *services.AnalysisService,
	facilityService *services.FacilityService,
	health func(ctx context.Context) error,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:   analysisService,
		facilities: facilityService,
		health:     health,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Code    int    `json:"code"`
}

// RunAnalysis handles POST /api/analysis
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/analysis"
	defer h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint)).ObserveDuration()

	req := h.analysis.NewRequest()
	if err := decodeBody(w, r, req); err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}

	report, err := h.analysis.Analyze(r.Context(), req)
	if err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, r, endpoint, report, http.StatusOK)
}

// LoadProfile handles POST /api/analysis/load-profile
func (h *AnalysisHandler) LoadProfile(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/analysis/load-profile"
	defer h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint)).ObserveDuration()

	req := h.analysis.NewRequest()
	if err := decodeBody(w, r, req); err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}

	result, err := h.analysis.LoadProfile(r.Context(), req)
	if err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, r, endpoint, result, http.StatusOK)
}

// Uncertainty handles POST /api/analysis/uncertainty
func (h *AnalysisHandler) Uncertainty(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/analysis/uncertainty"
	defer h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint)).ObserveDuration()

	req := h.analysis.NewRequest()
	if err := decodeBody(w, r, req); err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}

	result, err := h.analysis.Uncertainty(r.Context(), req)
	if err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, r, endpoint, result, http.StatusOK)
}

// AnalyzeFacility handles GET /api/facilities/{facility_id}/analysis
func (h *AnalysisHandler) AnalyzeFacility(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/facilities/{facility_id}/analysis"
	defer h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint)).ObserveDuration()

	req := h.analysis.NewRequest()
	if v := r.URL.Query().Get("facility_type"); v != "" {
		req.Options.FacilityType = models.FacilityType(v)
	}
	if v := r.URL.Query().Get("samples"); v != "" {
		samples, err := strconv.Atoi(v)
		if err != nil {
			h.sendError(w, r, endpoint, models.NewValidationError("samples", v, "must be an integer"))
			return
		}
		req.Uncertainty = &models.UncertaintyRequest{
			Ranges:  defaultUncertaintyRanges(req),
			Samples: samples,
		}
	}

	report, err := h.analysis.AnalyzeFacility(r.Context(), mux.Vars(r)["facility_id"], req)
	if err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, r, endpoint, report, http.StatusOK)
}

// SaveFacility handles PUT /api/facilities/{facility_id}
func (h *AnalysisHandler) SaveFacility(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/facilities/{facility_id}"
	defer h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint)).ObserveDuration()

	if h.facilities == nil {
		h.sendError(w, r, endpoint, services.ErrFacilityStoreUnavailable)
		return
	}

	var survey models.FacilitySurvey
	if err := decodeBody(w, r, &survey); err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	survey.FacilityID = mux.Vars(r)["facility_id"]

	if err := h.facilities.Save(r.Context(), &survey); err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, r, endpoint, map[string]interface{}{
		"facility_id": survey.FacilityID,
		"equipment":   len(survey.Equipment),
		"weather":     survey.Weather != nil,
	}, http.StatusOK)
}

// GetEquipment handles GET /api/facilities/{facility_id}/equipment
func (h *AnalysisHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/facilities/{facility_id}/equipment"
	defer h.metrics.NewTimer(h.metrics.APIRequestDuration.WithLabelValues(endpoint)).ObserveDuration()

	if h.facilities == nil {
		h.sendError(w, r, endpoint, services.ErrFacilityStoreUnavailable)
		return
	}

	equipment, err := h.facilities.Inventory(r.Context(), mux.Vars(r)["facility_id"])
	if err != nil {
		h.sendError(w, r, endpoint, err)
		return
	}
	h.sendJSON(w, r, endpoint, equipment, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AnalysisHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":    "healthy",
		"database":  "disabled",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.health != nil {
		status["database"] = "ok"
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "[HEALTH_CHECK] Database unhealthy", logging.Fields{"error": err.Error()})
			status["status"] = "degraded"
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	h.sendJSON(w, r, "/health", status, code)
}

// defaultUncertaintyRanges spreads the headline price assumptions ±25% around the request values
func defaultUncertaintyRanges(req *models.AnalysisRequest) map[models.Parameter]models.Range {
	spread := func(v float64) models.Range {
		return models.Range{Min: 0.75 * v, Max: 1.25 * v}
	}
	return map[models.Parameter]models.Range{
		models.ParamDieselFuelCost: spread(req.Financial.DieselFuelCostPerLiter),
		models.ParamPanelCost:      spread(req.Costing.PanelCostPerW),
		models.ParamBatteryCost:    spread(req.Costing.BatteryCost(req.System.BatteryChemistry)),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("body", "", "request body is empty")
		}
		return models.NewValidationError("body", "", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

func (h *AnalysisHandler) sendJSON(w http.ResponseWriter, r *http.Request, endpoint string, data interface{}, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(r.Context(), "[API_ENCODE_ERROR] Failed to write response", logging.Fields{
			"endpoint": endpoint,
		}, err)
	}
}

// sendError maps an error onto its HTTP status
func (h *AnalysisHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	statusCode := http.StatusInternalServerError
	errorType := "internal_error"
	response := ErrorResponse{Message: err.Error()}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		statusCode, errorType = http.StatusBadRequest, "invalid_input"
		response.Field = verr.Field
	case errors.Is(err, analysis.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		statusCode, errorType = http.StatusGatewayTimeout, "timeout"
	case repository.IsNotFound(err):
		statusCode, errorType = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrFacilityStoreUnavailable):
		statusCode, errorType = http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, analysis.ErrNumeric):
		statusCode, errorType = http.StatusUnprocessableEntity, "numeric"
	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
		}, err)
		response.Message = "internal error"
	}

	h.metrics.RecordAPIError(errorType, endpoint)
	response.Error = http.StatusText(statusCode)
	response.Code = statusCode
	h.sendJSON(w, r, endpoint, response, statusCode)
}

// RequestID tags each request with an ID taken from X-Request-ID or freshly generated
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// RegisterRoutes registers all API routes
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.Use(RequestID)

	router.HandleFunc("/api/analysis", h.RunAnalysis).Methods(http.MethodPost)
	router.HandleFunc("/api/analysis/load-profile", h.LoadProfile).Methods(http.MethodPost)
	router.HandleFunc("/api/analysis/uncertainty", h.Uncertainty).Methods(http.MethodPost)
	router.HandleFunc("/api/facilities/{facility_id}", h.SaveFacility).Methods(http.MethodPut)
	router.HandleFunc("/api/facilities/{facility_id}/equipment", h.GetEquipment).Methods(http.MethodGet)
	router.HandleFunc("/api/facilities/{facility_id}/analysis", h.AnalyzeFacility).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc(openAPIURL, OpenAPISpec).Methods(http.MethodGet)
	router.HandleFunc("/api/docs", SwaggerUI).Methods(http.MethodGet)
}
