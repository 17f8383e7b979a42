package analysis

import (
	"errors"
	"fmt"
	"math"

	"hybrid-energy-platform/internal/models"
)

// ErrNumeric marks a request whose arithmetic produced NaN or Inf
var ErrNumeric = errors.New("non-finite value in analysis")

// Scenario is the complete input of the costing → cash-flow → NPV/IRR pipeline.
// The uncertainty analysis substitutes single fields of a copy and re-evaluates it.
type Scenario struct {
	Summary   models.DemandSummary
	Sizing    models.SystemSizing
	Options   models.EnergyAnalysisOptions
	Costing   models.CostingParameters
	System    models.SystemConfiguration
	Financial models.FinancialParameters
}

// BuildCashFlows lays out [-initial, -annual(1), ..., -annual(years)]
func BuildCashFlows(initial float64, years int, annual func(year int) float64) models.CashFlowSeries {
	flows := make(models.CashFlowSeries, years+1)
	flows[0] = -initial
	for year := 1; year <= years; year++ {
		flows[year] = -annual(year)
	}
	return flows
}

// escalate is the price multiplier of a cost growing at rate, year 1 being the base year
func escalate(rate float64, year int) float64 {
	return math.Pow(1+rate, float64(year-1))
}

// EvaluateFinancials prices the renewable system and the diesel baseline over the project
// lifetime and compares them. IRR is taken on the incremental series (diesel costs avoided
// minus renewable costs), the only one of the pair that changes sign.
func EvaluateFinancials(s Scenario) (*models.FinancialResult, error) {
	fp := s.Financial
	years := fp.ProjectLifetimeYears
	annualKWh := s.Summary.AnnualConsumptionKWh

	renewableInitial := InitialCost(s.Sizing, s.Costing, s.System)
	renewableFlows := BuildCashFlows(renewableInitial, years, func(year int) float64 {
		return renewableInitial * fp.MaintenanceRate * escalate(fp.InflationRate, year)
	})

	fuelLitersPerYear := 0.0
	if fp.DieselEfficiencyKWhPerLiter > 0 {
		fuelLitersPerYear = s.Summary.DailyConsumptionKWh / fp.DieselEfficiencyKWhPerLiter * daysPerYear
	}
	dieselInitial := DieselGeneratorKW(s.Summary, s.Options) * s.Costing.GeneratorCostPerKW
	dieselFlows := BuildCashFlows(dieselInitial, years, func(year int) float64 {
		fuel := fuelLitersPerYear * fp.DieselFuelCostPerLiter * escalate(fp.FuelEscalationRate, year)
		maintenance := annualKWh * fp.DieselMaintenancePerKWh * escalate(fp.InflationRate, year)
		return fuel + maintenance
	})

	renewable := systemFinancials(renewableFlows, fp.DiscountRate, annualKWh, years)
	diesel := systemFinancials(dieselFlows, fp.DiscountRate, annualKWh, years)

	incremental := make(models.CashFlowSeries, len(renewableFlows))
	for t := range renewableFlows {
		incremental[t] = renewableFlows[t] - dieselFlows[t]
	}
	irr := IRR(incremental)

	result := &models.FinancialResult{
		Renewable:     renewable,
		Diesel:        diesel,
		NPV:           NPV(incremental, fp.DiscountRate),
		IRR:           irr.Rate,
		IRRConverged:  irr.Converged,
		LCOE:          renewable.LCOE,
		LifecycleCost: renewable.LifecycleCost,
		Comparison: models.Comparison{
			NPVDifference:   renewable.NPV - diesel.NPV,
			IRRDifference:   irr.Rate - fp.DiscountRate,
			LCOEDifference:  renewable.LCOE - diesel.LCOE,
			PaybackYears:    renewableInitial / math.Max(diesel.AnnualCost-renewable.AnnualCost, 1),
			LifetimeSavings: renewableFlows.Sum() - dieselFlows.Sum(),
		},
		Environmental: EnvironmentalImpact(s.Summary, fp),
	}

	if err := checkFinite(result); err != nil {
		return nil, err
	}
	return result, nil
}

func systemFinancials(flows models.CashFlowSeries, rate, annualKWh float64, years int) models.SystemFinancials {
	npv := NPV(flows, rate)
	annual := 0.0
	if len(flows) > 1 {
		annual = -flows[1]
	}
	return models.SystemFinancials{
		InitialCost:   -flows[0],
		AnnualCost:    annual,
		CashFlows:     flows,
		NPV:           npv,
		LifecycleCost: -npv,
		LCOE:          LCOE(-npv, annualKWh, rate, years),
	}
}

func checkFinite(r *models.FinancialResult) error {
	values := map[string]float64{
		"npv":                  r.NPV,
		"irr":                  r.IRR,
		"lcoe":                 r.LCOE,
		"lifecycle_cost":       r.LifecycleCost,
		"renewable.npv":        r.Renewable.NPV,
		"diesel.npv":           r.Diesel.NPV,
		"diesel.lcoe":          r.Diesel.LCOE,
		"payback_period_years": r.Comparison.PaybackYears,
		"lifetime_savings":     r.Comparison.LifetimeSavings,
		"co2_avoided_kg":       r.Environmental.CO2AvoidedKg,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is %v: %w", name, v, ErrNumeric)
		}
	}
	return nil
}
