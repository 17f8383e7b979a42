package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"hybrid-energy-platform/internal/models"
)

const (
	pvUpperMultiple        = 3.0
	batteryLowerFraction   = 0.5
	batteryUpperMultiple   = 3.0
	initialPVMultiple      = 1.3
	initialBatteryMultiple = 1.2

	// Per kWh of daily shortfall; large enough to dominate any hardware saving
	reliabilityPenaltyPerKWh = 1000.0

	inverterMultiple         = 1.1
	generatorMultiple        = 0.8
	chargeControllerVoltage  = 48.0
	chargeControllerHeadroom = 1.25

	DefaultOptimizerTimeout = 5 * time.Second
	maxOptimizerIterations  = 2000
)

// BatteryFloor is the minimum battery capacity under the configured sizing strategy
func BatteryFloor(summary models.DemandSummary, options models.EnergyAnalysisOptions, system models.SystemConfiguration) float64 {
	switch system.BatterySizing {
	case models.BatteryAutonomyOverDoD:
		if system.DepthOfDischarge <= 0 {
			return 0
		}
		return summary.DailyConsumptionKWh * system.BatteryAutonomyFactor / system.DepthOfDischarge
	default:
		return summary.DailyConsumptionKWh * (options.BatteryAutonomyHours / 24)
	}
}

// bound is a closed interval mapped onto the real line by a sine transform, so that an
// unconstrained method can search a box without ever leaving it
type bound struct {
	lo, hi float64
}

func (b bound) empty() bool {
	return b.lo > b.hi
}

func (b bound) toBox(u float64) float64 {
	if b.hi == b.lo {
		return b.lo
	}
	return b.lo + (b.hi-b.lo)*(1+math.Sin(u))/2
}

func (b bound) fromBox(x float64) float64 {
	if b.hi == b.lo {
		return 0
	}
	x = b.clamp(x)
	return math.Asin(2*(x-b.lo)/(b.hi-b.lo) - 1)
}

func (b bound) clamp(x float64) float64 {
	return math.Min(math.Max(x, b.lo), b.hi)
}

// sizingProblem is the PV/battery cost minimization for one demand summary
type sizingProblem struct {
	dailyKWh       float64
	peakSunHours   float64
	panelCostPerW  float64
	batteryCostKWh float64
	pv, battery    bound
}

// cost is the objective in physical units
func (p sizingProblem) cost(pvKW, batteryKWh float64) float64 {
	total := pvKW*1000*p.panelCostPerW + batteryKWh*p.batteryCostKWh

	generation := pvKW * p.peakSunHours
	if generation < p.dailyKWh {
		total += (p.dailyKWh - generation) * reliabilityPenaltyPerKWh
	}
	return total
}

func (p sizingProblem) objective(u []float64) float64 {
	return p.cost(p.pv.toBox(u[0]), p.battery.toBox(u[1]))
}

// SizeSystem picks the cheapest PV array and battery bank that satisfy the reliability
// constraints. It never fails: whenever the optimizer cannot produce a trustworthy answer the
// deterministic fallback rule is used and reported in the outcome.
func SizeSystem(ctx context.Context, summary models.DemandSummary, options models.EnergyAnalysisOptions, costing models.CostingParameters, system models.SystemConfiguration) models.SizingOutcome {
	peak := summary.PeakDemandKW
	daily := summary.DailyConsumptionKWh
	floor := BatteryFloor(summary, options, system)

	fallback := func(reason string) models.SizingOutcome {
		pv := peak * options.SafetyMargin
		return models.SizingOutcome{
			Status:          models.SizingFallback,
			Reason:          reason,
			Sizing:          deriveSizing(pv, floor, costing),
			BatteryFloorKWh: floor,
			ObjectiveValue:  0,
		}
	}

	if !(peak > 0) {
		return fallback("no demand to size for")
	}
	if err := ctx.Err(); err != nil {
		return fallback(fmt.Sprintf("sizing skipped: %v", err))
	}

	peakSunHours := options.PeakSunHours
	if peakSunHours <= 0 {
		peakSunHours = models.DefaultAnalysisOptions().PeakSunHours
	}

	problem := sizingProblem{
		dailyKWh:       daily,
		peakSunHours:   peakSunHours,
		panelCostPerW:  costing.PanelCostPerW,
		batteryCostKWh: costing.BatteryCost(system.BatteryChemistry),
		pv:             bound{lo: math.Max(peak, peak*options.SafetyMargin), hi: pvUpperMultiple * peak},
		battery:        bound{lo: math.Max(batteryLowerFraction*daily, floor), hi: batteryUpperMultiple * daily},
	}
	if problem.pv.empty() || problem.battery.empty() {
		return fallback("constraints cannot be met within the sizing bounds")
	}

	timeout := options.OptimizerTimeout
	if timeout <= 0 {
		timeout = DefaultOptimizerTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return fallback("sizing skipped: deadline exceeded")
	}

	initial := []float64{
		problem.pv.fromBox(initialPVMultiple * peak),
		problem.battery.fromBox(initialBatteryMultiple * daily),
	}

	settings := &optimize.Settings{
		MajorIterations: maxOptimizerIterations,
		Runtime:         timeout,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Relative:   1e-9,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(optimize.Problem{Func: problem.objective}, initial, settings, &optimize.NelderMead{})
	if err != nil {
		return fallback(fmt.Sprintf("optimizer failed: %v", err))
	}
	if !converged(result.Status) {
		return fallback(fmt.Sprintf("optimizer did not converge: %v", result.Status))
	}

	pv := problem.pv.clamp(problem.pv.toBox(result.X[0]))
	battery := problem.battery.clamp(problem.battery.toBox(result.X[1]))
	if math.IsNaN(pv) || math.IsNaN(battery) || math.IsInf(result.F, 0) {
		return fallback("optimizer returned a non-finite solution")
	}

	return models.SizingOutcome{
		Status:              models.SizingOptimized,
		Sizing:              deriveSizing(pv, battery, costing),
		BatteryFloorKWh:     floor,
		ObjectiveValue:      problem.cost(pv, battery),
		Iterations:          result.Stats.MajorIterations,
		FunctionEvaluations: result.Stats.FuncEvaluations,
	}
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success,
		optimize.FunctionConvergence,
		optimize.FunctionThreshold,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// deriveSizing fills in the balance-of-system components from the PV and battery sizes
func deriveSizing(pvKW, batteryKWh float64, costing models.CostingParameters) models.SystemSizing {
	sizing := models.SystemSizing{
		PVSystemSizeKW:       pvKW,
		BatteryCapacityKWh:   batteryKWh,
		InverterSizeKW:       inverterMultiple * pvKW,
		GeneratorSizeKW:      generatorMultiple * pvKW,
		BatteryBankVoltage:   batteryBankVoltage(pvKW),
		ChargeControllerAmps: pvKW * 1000 / chargeControllerVoltage * chargeControllerHeadroom,
	}
	if costing.PanelRatingW > 0 {
		sizing.PanelCount = int(math.Ceil(pvKW * 1000 / costing.PanelRatingW))
	}
	return sizing
}

func batteryBankVoltage(pvKW float64) int {
	switch {
	case pvKW <= 1:
		return 12
	case pvKW <= 5:
		return 24
	default:
		return 48
	}
}
