package analysis

import (
	"math"

	"hybrid-energy-platform/internal/models"
)

const (
	irrInitialGuess    = 0.10
	irrTolerance       = 1e-6
	irrMaxIterations   = 100
	irrDerivativeFloor = 1e-10
	irrDefaultRate     = 0.10
	irrLowerClamp      = 0.0
	irrUpperClamp      = 1.0
)

// NPV discounts a cash-flow series: Σ cf_t / (1+rate)^t
func NPV(flows models.CashFlowSeries, rate float64) float64 {
	total := 0.0
	for t, cf := range flows {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

// npvDerivative is dNPV/drate: Σ -t·cf_t / (1+rate)^(t+1)
func npvDerivative(flows models.CashFlowSeries, rate float64) float64 {
	total := 0.0
	for t, cf := range flows {
		total += -float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return total
}

// IRRResult is the outcome of the rate-of-return search
type IRRResult struct {
	Rate       float64
	Converged  bool
	Iterations int
}

// IRR finds the rate at which NPV is zero by Newton-Raphson. A vanishing derivative stops
// the search at the current rate; running out of iterations yields the 10% default. Both are
// reported as not converged. The rate is clamped to [0, 1].
func IRR(flows models.CashFlowSeries) IRRResult {
	rate := irrInitialGuess

	for i := 1; i <= irrMaxIterations; i++ {
		derivative := npvDerivative(flows, rate)
		if math.Abs(derivative) < irrDerivativeFloor {
			return IRRResult{Rate: clampRate(rate), Converged: false, Iterations: i}
		}

		next := rate - NPV(flows, rate)/derivative
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			break
		}

		if math.Abs(next-rate) < irrTolerance {
			return IRRResult{Rate: clampRate(next), Converged: true, Iterations: i}
		}
		rate = next
	}

	return IRRResult{Rate: irrDefaultRate, Converged: false, Iterations: irrMaxIterations}
}

func clampRate(rate float64) float64 {
	return math.Min(math.Max(rate, irrLowerClamp), irrUpperClamp)
}

// LCOE spreads a lifecycle cost over the discounted energy of years 1..N.
// Zero energy yields zero rather than a division blow-up.
func LCOE(lifecycleCost, annualEnergyKWh, rate float64, years int) float64 {
	discountedEnergy := 0.0
	for t := 1; t <= years; t++ {
		discountedEnergy += annualEnergyKWh / math.Pow(1+rate, float64(t))
	}
	if discountedEnergy <= 0 {
		return 0
	}
	return lifecycleCost / discountedEnergy
}
