package analysis

import (
	"context"
	"fmt"
	"time"

	"hybrid-energy-platform/internal/models"
)

// Stage names a step of the analysis pipeline
type Stage string

const (
	StageLoadProfile     Stage = "load_profile"
	StageDemandSummary   Stage = "demand_summary"
	StageSizing          Stage = "system_sizing"
	StageFinancial       Stage = "financial"
	StageUncertainty     Stage = "uncertainty"
	StageRecommendations Stage = "recommendations"
)

// StageObserver is told how long each stage took
type StageObserver func(stage Stage, elapsed time.Duration)

// Pipeline runs the stages in order. The zero value is ready to use.
type Pipeline struct {
	UncertaintyTimeout time.Duration
	Observe            StageObserver
}

// Analyze runs the default pipeline
func Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisReport, error) {
	return Pipeline{}.Run(ctx, req)
}

func (p Pipeline) timed(stage Stage, fn func()) {
	start := time.Now()
	fn()
	if p.Observe != nil {
		p.Observe(stage, time.Since(start))
	}
}

// Run validates the request and computes the full report. Invalid input never reaches the
// numeric stages.
func (p Pipeline) Run(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	report := &models.AnalysisReport{FacilityID: req.FacilityID}

	p.timed(StageLoadProfile, func() {
		report.LoadProfile, report.WeatherSource = GenerateLoadProfile(req.Equipment, req.Weather)
	})

	p.timed(StageDemandSummary, func() {
		report.Summary = SummarizeDemand(report.LoadProfile, req.Equipment)
		report.CategoryBreakdown = CategoryBreakdown(req.Equipment)
	})

	p.timed(StageSizing, func() {
		report.Sizing = SizeSystem(ctx, report.Summary, req.Options, req.Costing, req.System)
	})

	scenario := Scenario{
		Summary:   report.Summary,
		Sizing:    report.Sizing.Sizing,
		Options:   req.Options,
		Costing:   req.Costing,
		System:    req.System,
		Financial: req.Financial,
	}

	var err error
	p.timed(StageFinancial, func() {
		report.Financial, err = EvaluateFinancials(scenario)
	})
	if err != nil {
		return nil, fmt.Errorf("financial evaluation: %w", err)
	}

	if req.Uncertainty != nil {
		p.timed(StageUncertainty, func() {
			report.Uncertainty, err = AnalyzeUncertainty(ctx, scenario, *req.Uncertainty, p.UncertaintyTimeout)
		})
		if err != nil {
			return nil, fmt.Errorf("uncertainty analysis: %w", err)
		}
	}

	p.timed(StageRecommendations, func() {
		report.Recommendations = Recommend(report.Summary, report.CategoryBreakdown, req.Options.FacilityType)
	})

	return report, nil
}
