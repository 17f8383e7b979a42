package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"hybrid-energy-platform/internal/analysis"
	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/pkg/logging"
	"hybrid-energy-platform/pkg/metrics"
)

// ErrFacilityStoreUnavailable is returned for facility lookups when no database is configured
var ErrFacilityStoreUnavailable = errors.New("facility store is not configured")

// AnalysisService runs analyses and reports them to logs and metrics
type AnalysisService struct {
	pipeline   analysis.Pipeline
	newRequest func() *models.AnalysisRequest
	facilities *FacilityService
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewAnalysisService wires the pipeline. newRequest supplies the parameter defaults every
// request is decoded onto; facilities may be nil.
func NewAnalysisService(newRequest func() *models.AnalysisRequest, uncertaintyTimeout time.Duration, facilities *FacilityService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalysisService {
	if newRequest == nil {
		newRequest = models.NewAnalysisRequest
	}

	s := &AnalysisService{
		newRequest: newRequest,
		facilities: facilities,
		logger:     logger,
		metrics:    metricsCollector,
	}
	s.pipeline = analysis.Pipeline{
		UncertaintyTimeout: uncertaintyTimeout,
		Observe: func(stage analysis.Stage, elapsed time.Duration) {
			metricsCollector.ObserveStage(string(stage), elapsed)
		},
	}
	return s
}

// NewRequest returns a request pre-filled with the configured defaults
func (s *AnalysisService) NewRequest() *models.AnalysisRequest {
	return s.newRequest()
}

// Analyze runs the full pipeline and stamps the report with a fresh ID and timestamp
func (s *AnalysisService) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisReport, error) {
	analysisID := uuid.NewString()
	ctx = logging.WithAnalysisID(ctx, analysisID)
	if req.FacilityID != "" {
		ctx = logging.WithFacilityID(ctx, req.FacilityID)
	}

	start := time.Now()
	report, err := s.pipeline.Run(ctx, req)
	if err != nil {
		s.metrics.RecordAnalysis(resultLabel(err))
		s.logger.Warn(ctx, "[ANALYSIS_FAILED] Analysis rejected or aborted", logging.Fields{
			"result": resultLabel(err),
			"error":  err.Error(),
		})
		return nil, err
	}

	report.AnalysisID = analysisID
	report.GeneratedAt = time.Now().UTC()
	s.record(ctx, report, time.Since(start))
	return report, nil
}

// AnalyzeFacility analyses a stored facility, with req supplying the parameter sections
func (s *AnalysisService) AnalyzeFacility(ctx context.Context, facilityID string, req *models.AnalysisRequest) (*models.AnalysisReport, error) {
	if s.facilities == nil {
		return nil, ErrFacilityStoreUnavailable
	}
	if err := s.facilities.BuildRequest(ctx, facilityID, req); err != nil {
		return nil, err
	}
	return s.Analyze(ctx, req)
}

// LoadProfileResult is the demand-side subset of a report
type LoadProfileResult struct {
	WeatherSource     models.WeatherSource      `json:"weather_source"`
	LoadProfile       []models.LoadProfilePoint `json:"load_profile"`
	Summary           models.DemandSummary      `json:"demand_summary"`
	CategoryBreakdown models.CategoryBreakdown  `json:"category_breakdown"`
}

// LoadProfile synthesizes and summarizes demand without sizing or pricing anything
func (s *AnalysisService) LoadProfile(ctx context.Context, req *models.AnalysisRequest) (*LoadProfileResult, error) {
	if err := req.Validate(); err != nil {
		s.metrics.RecordAnalysis(resultLabel(err))
		return nil, err
	}

	profile, source := analysis.GenerateLoadProfile(req.Equipment, req.Weather)
	return &LoadProfileResult{
		WeatherSource:     source,
		LoadProfile:       profile,
		Summary:           analysis.SummarizeDemand(profile, req.Equipment),
		CategoryBreakdown: analysis.CategoryBreakdown(req.Equipment),
	}, nil
}

// Uncertainty runs the pipeline and returns only its uncertainty section
func (s *AnalysisService) Uncertainty(ctx context.Context, req *models.AnalysisRequest) (*models.UncertaintyResult, error) {
	if req.Uncertainty == nil {
		err := models.NewValidationError("uncertainty", nil, "is required")
		s.metrics.RecordAnalysis(resultLabel(err))
		return nil, err
	}

	report, err := s.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	return report.Uncertainty, nil
}

func (s *AnalysisService) record(ctx context.Context, report *models.AnalysisReport, elapsed time.Duration) {
	s.metrics.RecordAnalysis("ok")
	s.metrics.RecordSizingOutcome(string(report.Sizing.Status))
	if !report.Financial.IRRConverged {
		s.metrics.IRRNonConvergenceTotal.Inc()
	}
	if report.Uncertainty != nil && report.Uncertainty.MonteCarlo != nil {
		s.metrics.MonteCarloSamples.Observe(float64(report.Uncertainty.MonteCarlo.Samples))
	}

	if !report.Sizing.Optimized() {
		s.logger.Warn(ctx, "[SIZING_FALLBACK] Optimizer result not used, fallback sizing applied", logging.Fields{
			"reason": report.Sizing.Reason,
		})
	}

	s.logger.Info(ctx, "[ANALYSIS_COMPLETE] Analysis completed", logging.Fields{
		"weather_source": report.WeatherSource,
		"peak_kw":        report.Summary.PeakDemandKW,
		"daily_kwh":      report.Summary.DailyConsumptionKWh,
		"pv_kw":          report.Sizing.Sizing.PVSystemSizeKW,
		"battery_kwh":    report.Sizing.Sizing.BatteryCapacityKWh,
		"sizing_status":  report.Sizing.Status,
		"npv":            report.Financial.NPV,
		"irr":            report.Financial.IRR,
		"irr_converged":  report.Financial.IRRConverged,
		"duration_ms":    elapsed.Milliseconds(),
	})
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, analysis.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
