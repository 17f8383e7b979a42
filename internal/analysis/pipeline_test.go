package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hybrid-energy-platform/internal/models"
)

func TestAnalyze_Clinic(t *testing.T) {
	req := models.NewAnalysisRequest()
	req.FacilityID = "clinic-7"
	req.Equipment = ruralClinic()
	req.Options.FacilityType = models.FacilityHealthClinic
	req.Uncertainty = &models.UncertaintyRequest{
		Sensitivity: map[models.Parameter][]float64{models.ParamDieselFuelCost: {1.0, 2.0}},
		Ranges:      map[models.Parameter]models.Range{models.ParamDieselFuelCost: {Min: 1.0, Max: 2.0}},
		Samples:     100,
		Seed:        11,
	}

	stages := []Stage{}
	p := Pipeline{
		UncertaintyTimeout: time.Minute,
		Observe:            func(stage Stage, _ time.Duration) { stages = append(stages, stage) },
	}

	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "clinic-7", report.FacilityID)
	assert.Equal(t, models.WeatherSynthetic, report.WeatherSource)
	assert.Len(t, report.LoadProfile, models.HoursPerDay)
	assert.Greater(t, report.Summary.PeakDemandKW, 0.0)
	assert.InDelta(t, 1.0, report.CategoryBreakdown.Share(models.CategoryMedical)+
		report.CategoryBreakdown.Share(models.CategoryLighting)+
		report.CategoryBreakdown.Share(models.CategoryCooling)+
		report.CategoryBreakdown.Share(models.CategoryComputing), 1e-9)

	assert.GreaterOrEqual(t, report.Sizing.Sizing.PVSystemSizeKW, report.Summary.PeakDemandKW*req.Options.SafetyMargin)
	assert.GreaterOrEqual(t, report.Sizing.Sizing.BatteryCapacityKWh, report.Sizing.BatteryFloorKWh)

	require.NotNil(t, report.Financial)
	assert.Len(t, report.Financial.Renewable.CashFlows, req.Financial.ProjectLifetimeYears+1)

	require.NotNil(t, report.Uncertainty)
	assert.Len(t, report.Uncertainty.Sensitivity, 2)
	require.NotNil(t, report.Uncertainty.MonteCarlo)
	assert.Equal(t, report.Financial.NPV, report.Uncertainty.BaseNPV)

	assert.NotEmpty(t, report.Recommendations)
	assert.Equal(t, facilityAdvice[models.FacilityHealthClinic], report.Recommendations[len(report.Recommendations)-1])

	assert.Equal(t, []Stage{
		StageLoadProfile,
		StageDemandSummary,
		StageSizing,
		StageFinancial,
		StageUncertainty,
		StageRecommendations,
	}, stages)
}

func TestAnalyze_SuppliedWeather(t *testing.T) {
	req := models.NewAnalysisRequest()
	req.Equipment = ledLighting()
	req.Weather = flatWeather(20)

	report, err := Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.WeatherSupplied, report.WeatherSource)
	assert.Nil(t, report.Uncertainty)
	assert.InDelta(t, 3.042, report.Summary.DailyConsumptionKWh, 1e-9)
}

func TestAnalyze_EmptyEquipment(t *testing.T) {
	req := models.NewAnalysisRequest()

	report, err := Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Zero(t, report.Summary.PeakDemandKW)
	assert.Equal(t, models.SizingFallback, report.Sizing.Status)
	assert.Zero(t, report.Sizing.Sizing.PVSystemSizeKW)
	assert.Empty(t, report.Recommendations)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.AnalysisRequest)
		field  string
	}{
		{
			name: "negative power",
			mutate: func(r *models.AnalysisRequest) {
				r.Equipment = ledLighting()
				r.Equipment[0].PowerRatingW = -5
			},
			field: "equipment[0].power_rating_w",
		},
		{
			name: "short weather series",
			mutate: func(r *models.AnalysisRequest) {
				r.Equipment = ledLighting()
				r.Weather = &models.WeatherSeries{TemperatureC: []float64{20, 21}, IrradianceWm2: []float64{0, 0}}
			},
			field: "weather.temperature",
		},
		{
			name:   "safety margin out of range",
			mutate: func(r *models.AnalysisRequest) { r.Options.SafetyMargin = 3 },
			field:  "options.safety_margin",
		},
		{
			name:   "discount rate out of range",
			mutate: func(r *models.AnalysisRequest) { r.Financial.DiscountRate = 1.5 },
			field:  "financial.discount_rate",
		},
		{
			name: "unknown uncertain parameter",
			mutate: func(r *models.AnalysisRequest) {
				r.Uncertainty = &models.UncertaintyRequest{Ranges: map[models.Parameter]models.Range{"sunshine": {Min: 0, Max: 1}}}
			},
			field: "uncertainty.ranges",
		},
		{
			name: "sensitivity value outside the field's range",
			mutate: func(r *models.AnalysisRequest) {
				r.Uncertainty = &models.UncertaintyRequest{Sensitivity: map[models.Parameter][]float64{models.ParamDieselEfficiency: {-3}}}
			},
			field: "uncertainty.sensitivity.diesel_efficiency",
		},
		{
			name: "monte carlo range outside the field's range",
			mutate: func(r *models.AnalysisRequest) {
				r.Uncertainty = &models.UncertaintyRequest{Ranges: map[models.Parameter]models.Range{models.ParamDiscountRate: {Min: -1, Max: -1}}}
			},
			field: "uncertainty.ranges.discount_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := models.NewAnalysisRequest()
			tt.mutate(req)

			report, err := Analyze(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, models.ErrInvalidInput)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
