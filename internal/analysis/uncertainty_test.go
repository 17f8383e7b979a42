package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hybrid-energy-platform/internal/models"
)

func TestParameterRoundTrip(t *testing.T) {
	s := clinicScenario(t)

	for _, p := range models.Parameters {
		t.Run(string(p), func(t *testing.T) {
			updated := WithParameter(s, p, 0.123)
			assert.Equal(t, 0.123, ParameterValue(updated, p))
		})
	}

	assert.Equal(t, 300.0, ParameterValue(s, models.ParamBatteryCost))
}

func TestRunSensitivity(t *testing.T) {
	s := clinicScenario(t)
	base := s.Financial.DieselFuelCostPerLiter

	rows, err := RunSensitivity(context.Background(), s, map[models.Parameter][]float64{
		models.ParamDieselFuelCost: {base, base * 1.5},
		models.ParamDiscountRate:   {0.05},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// ordered by parameter name, then by the caller's value order
	assert.Equal(t, models.ParamDieselFuelCost, rows[0].Parameter)
	assert.Equal(t, models.ParamDieselFuelCost, rows[1].Parameter)
	assert.Equal(t, models.ParamDiscountRate, rows[2].Parameter)

	assert.InDelta(t, 0.0, rows[0].NPVChangePct, 1e-9)
	assert.InDelta(t, 0.0, rows[0].IRRChangePct, 1e-9)

	// dearer fuel makes the renewable option more attractive
	assert.Greater(t, rows[1].NPV, rows[0].NPV)
	assert.Greater(t, rows[1].NPVChangePct, 0.0)
}

func TestRunSensitivity_Cancelled(t *testing.T) {
	s := clinicScenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunSensitivity(ctx, s, map[models.Parameter][]float64{
		models.ParamPanelCost: {0.3},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClampSamples(t *testing.T) {
	tests := []struct {
		requested int
		expected  int
	}{
		{requested: 0, expected: DefaultMonteCarloSamples},
		{requested: -5, expected: DefaultMonteCarloSamples},
		{requested: 10, expected: MinMonteCarloSamples},
		{requested: 500, expected: 500},
		{requested: 50000, expected: MaxMonteCarloSamples},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampSamples(tt.requested), "requested %d", tt.requested)
	}
}

func fuelAndPanelRanges() map[models.Parameter]models.Range {
	return map[models.Parameter]models.Range{
		models.ParamDieselFuelCost: {Min: 1.0, Max: 2.5},
		models.ParamPanelCost:      {Min: 0.3, Max: 0.6},
		models.ParamDiscountRate:   {Min: 0.05, Max: 0.12},
	}
}

func TestRunMonteCarlo(t *testing.T) {
	s := clinicScenario(t)

	summary, err := RunMonteCarlo(context.Background(), s, fuelAndPanelRanges(), 500, 42)
	require.NoError(t, err)

	assert.Equal(t, 500, summary.Samples)
	assert.GreaterOrEqual(t, summary.ProbabilityPositiveNPV, 0.0)
	assert.LessOrEqual(t, summary.ProbabilityPositiveNPV, 1.0)
	assert.LessOrEqual(t, summary.NPVP5, summary.NPVMean)
	assert.GreaterOrEqual(t, summary.NPVP95, summary.NPVMean)
	assert.LessOrEqual(t, summary.IRRP5, summary.IRRP95)
	assert.Greater(t, summary.NPVStdDev, 0.0)
}

func TestRunMonteCarlo_SeedIsDeterministic(t *testing.T) {
	s := clinicScenario(t)

	first, err := RunMonteCarlo(context.Background(), s, fuelAndPanelRanges(), 300, 7)
	require.NoError(t, err)
	second, err := RunMonteCarlo(context.Background(), s, fuelAndPanelRanges(), 300, 7)
	require.NoError(t, err)
	other, err := RunMonteCarlo(context.Background(), s, fuelAndPanelRanges(), 300, 8)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first.NPVMean, other.NPVMean)
}

func TestRunMonteCarlo_StandardErrorShrinks(t *testing.T) {
	s := clinicScenario(t)

	small, err := RunMonteCarlo(context.Background(), s, fuelAndPanelRanges(), 200, 1)
	require.NoError(t, err)
	large, err := RunMonteCarlo(context.Background(), s, fuelAndPanelRanges(), 2000, 1)
	require.NoError(t, err)

	assert.Less(t, large.NPVStdError, small.NPVStdError)
}

func TestAnalyzeUncertainty(t *testing.T) {
	s := clinicScenario(t)
	req := models.UncertaintyRequest{
		Sensitivity: map[models.Parameter][]float64{models.ParamMaintenanceRate: {0.01, 0.03}},
		Ranges:      fuelAndPanelRanges(),
		Samples:     100,
		Seed:        3,
	}

	result, err := AnalyzeUncertainty(context.Background(), s, req, time.Minute)
	require.NoError(t, err)

	base, err := EvaluateFinancials(s)
	require.NoError(t, err)
	assert.Equal(t, base.NPV, result.BaseNPV)
	assert.Equal(t, base.IRR, result.BaseIRR)
	assert.Len(t, result.Sensitivity, 2)
	require.NotNil(t, result.MonteCarlo)
	assert.Equal(t, 100, result.MonteCarlo.Samples)
}

func TestAnalyzeUncertainty_Timeout(t *testing.T) {
	s := clinicScenario(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	tests := []struct {
		name string
		req  models.UncertaintyRequest
	}{
		{
			name: "sensitivity",
			req:  models.UncertaintyRequest{Sensitivity: map[models.Parameter][]float64{models.ParamPanelCost: {0.5}}},
		},
		{
			name: "monte carlo",
			req:  models.UncertaintyRequest{Ranges: fuelAndPanelRanges()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyzeUncertainty(ctx, s, tt.req, 0)
			assert.ErrorIs(t, err, ErrTimeout)
		})
	}
}
