package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"hybrid-energy-platform/internal/models"
)

// ErrTimeout is returned when the uncertainty analysis runs past its time budget
var ErrTimeout = errors.New("uncertainty analysis exceeded its time budget")

const (
	MinMonteCarloSamples      = 100
	MaxMonteCarloSamples      = 10000
	DefaultMonteCarloSamples  = 1000
	DefaultUncertaintyTimeout = 30 * time.Second

	// The deadline is checked once per batch of samples
	sampleBatchSize = 256
	// Second PCG stream word, fixed so a seed fully determines the draws
	pcgStream = 0x9e3779b97f4a7c15
)

// ParameterValue reads the current value of an uncertain parameter
func ParameterValue(s Scenario, p models.Parameter) float64 {
	switch p {
	case models.ParamDiscountRate:
		return s.Financial.DiscountRate
	case models.ParamDieselFuelCost:
		return s.Financial.DieselFuelCostPerLiter
	case models.ParamPanelCost:
		return s.Costing.PanelCostPerW
	case models.ParamBatteryCost:
		return s.Costing.BatteryCost(s.System.BatteryChemistry)
	case models.ParamInverterCost:
		return s.Costing.InverterCostPerKW
	case models.ParamMaintenanceRate:
		return s.Financial.MaintenanceRate
	case models.ParamFuelEscalationRate:
		return s.Financial.FuelEscalationRate
	case models.ParamDieselEfficiency:
		return s.Financial.DieselEfficiencyKWhPerLiter
	}
	return math.NaN()
}

// WithParameter returns a copy of the scenario with one parameter substituted
func WithParameter(s Scenario, p models.Parameter, value float64) Scenario {
	p.Apply(&s.Costing, &s.Financial, value)
	return s
}

func evaluate(s Scenario) (npv, irr float64, err error) {
	result, err := EvaluateFinancials(s)
	if err != nil {
		return 0, 0, err
	}
	return result.NPV, result.IRR, nil
}

// percentChange is relative to |base|; a zero base reports no change
func percentChange(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / math.Abs(base) * 100
}

func sortedParameters[V any](m map[models.Parameter]V) []models.Parameter {
	params := make([]models.Parameter, 0, len(m))
	for p := range m {
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i] < params[j] })
	return params
}

// RunSensitivity re-evaluates the whole financial pipeline once per (parameter, value) pair,
// each time with only that parameter substituted. Rows are ordered by parameter name, then by
// the caller's value order.
func RunSensitivity(ctx context.Context, base Scenario, variations map[models.Parameter][]float64) ([]models.SensitivityRow, error) {
	baseNPV, baseIRR, err := evaluate(base)
	if err != nil {
		return nil, fmt.Errorf("base case: %w", err)
	}

	rows := make([]models.SensitivityRow, 0)
	for _, p := range sortedParameters(variations) {
		for _, value := range variations[p] {
			if err := ctx.Err(); err != nil {
				return nil, contextError(err)
			}

			npv, irr, err := evaluate(WithParameter(base, p, value))
			if err != nil {
				return nil, fmt.Errorf("sensitivity %s=%v: %w", p, value, err)
			}

			rows = append(rows, models.SensitivityRow{
				Parameter:    p,
				Value:        value,
				NPV:          npv,
				IRR:          irr,
				NPVChangePct: percentChange(npv, baseNPV),
				IRRChangePct: percentChange(irr, baseIRR),
			})
		}
	}
	return rows, nil
}

// ClampSamples bounds a requested Monte Carlo sample count; zero selects the default
func ClampSamples(n int) int {
	if n <= 0 {
		n = DefaultMonteCarloSamples
	}
	if n < MinMonteCarloSamples {
		return MinMonteCarloSamples
	}
	if n > MaxMonteCarloSamples {
		return MaxMonteCarloSamples
	}
	return n
}

// drawSamples generates every parameter's draws up front, one batch per parameter
func drawSamples(ranges map[models.Parameter]models.Range, params []models.Parameter, n int, seed uint64) map[models.Parameter][]float64 {
	src := rand.NewPCG(seed, pcgStream)
	draws := make(map[models.Parameter][]float64, len(params))
	for _, p := range params {
		dist := distuv.Uniform{Min: ranges[p].Min, Max: ranges[p].Max, Src: src}
		values := make([]float64, n)
		for i := range values {
			values[i] = dist.Rand()
		}
		draws[p] = values
	}
	return draws
}

// RunMonteCarlo samples every ranged parameter independently and uniformly, recomputes the
// full costing → cash-flow → NPV/IRR pipeline per sample and summarizes the distribution.
func RunMonteCarlo(ctx context.Context, base Scenario, ranges map[models.Parameter]models.Range, samples int, seed uint64) (*models.MonteCarloSummary, error) {
	n := ClampSamples(samples)
	params := sortedParameters(ranges)
	draws := drawSamples(ranges, params, n, seed)

	npvs := make([]float64, n)
	irrs := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%sampleBatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("monte carlo stopped after %d of %d samples: %w", i, n, contextError(err))
			}
		}

		scenario := base
		for _, p := range params {
			scenario = WithParameter(scenario, p, draws[p][i])
		}

		npv, irr, err := evaluate(scenario)
		if err != nil {
			return nil, fmt.Errorf("monte carlo sample %d: %w", i, err)
		}
		npvs[i] = npv
		irrs[i] = irr
	}

	return summarizeSamples(npvs, irrs), nil
}

func summarizeSamples(npvs, irrs []float64) *models.MonteCarloSummary {
	n := len(npvs)
	positive := 0
	for _, v := range npvs {
		if v > 0 {
			positive++
		}
	}

	npvMean, npvStd := stat.MeanStdDev(npvs, nil)
	irrMean, irrStd := stat.MeanStdDev(irrs, nil)

	sortedNPV := append([]float64(nil), npvs...)
	sort.Float64s(sortedNPV)
	sortedIRR := append([]float64(nil), irrs...)
	sort.Float64s(sortedIRR)

	return &models.MonteCarloSummary{
		Samples:                n,
		NPVMean:                npvMean,
		NPVStdDev:              npvStd,
		NPVStdError:            npvStd / math.Sqrt(float64(n)),
		NPVP5:                  stat.Quantile(0.05, stat.Empirical, sortedNPV, nil),
		NPVP95:                 stat.Quantile(0.95, stat.Empirical, sortedNPV, nil),
		IRRMean:                irrMean,
		IRRStdDev:              irrStd,
		IRRP5:                  stat.Quantile(0.05, stat.Empirical, sortedIRR, nil),
		IRRP95:                 stat.Quantile(0.95, stat.Empirical, sortedIRR, nil),
		ProbabilityPositiveNPV: float64(positive) / float64(n),
	}
}

// AnalyzeUncertainty runs the requested sensitivity table and Monte Carlo simulation under a
// single wall-clock budget
func AnalyzeUncertainty(ctx context.Context, base Scenario, req models.UncertaintyRequest, timeout time.Duration) (*models.UncertaintyResult, error) {
	if timeout <= 0 {
		timeout = DefaultUncertaintyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	baseNPV, baseIRR, err := evaluate(base)
	if err != nil {
		return nil, fmt.Errorf("base case: %w", err)
	}
	result := &models.UncertaintyResult{BaseNPV: baseNPV, BaseIRR: baseIRR}

	if len(req.Sensitivity) > 0 {
		rows, err := RunSensitivity(ctx, base, req.Sensitivity)
		if err != nil {
			return nil, err
		}
		result.Sensitivity = rows
	}

	if len(req.Ranges) > 0 {
		summary, err := RunMonteCarlo(ctx, base, req.Ranges, req.Samples, req.Seed)
		if err != nil {
			return nil, err
		}
		result.MonteCarlo = summary
	}

	return result, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
