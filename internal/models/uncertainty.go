package models

import (
	"fmt"
	"sort"
)

// Parameter names an uncertain input of the financial pipeline
type Parameter string

const (
	ParamDiscountRate       Parameter = "discount_rate"
	ParamDieselFuelCost     Parameter = "diesel_fuel_cost_per_liter"
	ParamPanelCost          Parameter = "panel_cost_per_watt"
	ParamBatteryCost        Parameter = "battery_cost_per_kwh"
	ParamInverterCost       Parameter = "inverter_cost_per_kw"
	ParamMaintenanceRate    Parameter = "maintenance_rate"
	ParamFuelEscalationRate Parameter = "fuel_escalation_rate"
	ParamDieselEfficiency   Parameter = "diesel_efficiency"
)

// Parameters lists every parameter the uncertainty analysis can vary
var Parameters = []Parameter{
	ParamDiscountRate,
	ParamDieselFuelCost,
	ParamPanelCost,
	ParamBatteryCost,
	ParamInverterCost,
	ParamMaintenanceRate,
	ParamFuelEscalationRate,
	ParamDieselEfficiency,
}

// Valid reports whether p is a known parameter
func (p Parameter) Valid() bool {
	for _, known := range Parameters {
		if p == known {
			return true
		}
	}
	return false
}

// Range is a closed interval a parameter is drawn from
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// UncertaintyRequest lists what to vary
type UncertaintyRequest struct {
	Sensitivity map[Parameter][]float64 `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
	Ranges      map[Parameter]Range     `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Samples     int                     `json:"samples,omitempty" yaml:"samples,omitempty"`
	Seed        uint64                  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Apply substitutes value for the parameter in the owning section
func (p Parameter) Apply(costing *CostingParameters, financial *FinancialParameters, value float64) {
	switch p {
	case ParamDiscountRate:
		financial.DiscountRate = value
	case ParamDieselFuelCost:
		financial.DieselFuelCostPerLiter = value
	case ParamPanelCost:
		costing.PanelCostPerW = value
	case ParamBatteryCost:
		costing.BatteryCostPerKWh = value
	case ParamInverterCost:
		costing.InverterCostPerKW = value
	case ParamMaintenanceRate:
		financial.MaintenanceRate = value
	case ParamFuelEscalationRate:
		financial.FuelEscalationRate = value
	case ParamDieselEfficiency:
		financial.DieselEfficiencyKWhPerLiter = value
	}
}

// checkValue applies value to copies of the base sections and validates the result, so a
// substituted value obeys the same range as the field it replaces
func (p Parameter) checkValue(field string, costing CostingParameters, financial FinancialParameters, value float64) error {
	// zero battery cost means "chemistry default" on the request but is meaningless as a draw
	if p == ParamBatteryCost && !(value > 0) {
		return NewValidationError(field, value, "must be greater than 0")
	}

	p.Apply(&costing, &financial, value)
	err := costing.Validate()
	if err == nil {
		err = financial.Validate()
	}
	if err != nil {
		ve := err.(*ValidationError)
		return NewValidationError(field, value, ve.Message)
	}
	return nil
}

// Validate checks parameter names, range ordering and that every value substituted into the
// base costing and financial sections is itself valid
func (u UncertaintyRequest) Validate(costing CostingParameters, financial FinancialParameters) error {
	for _, p := range sortedKeys(u.Sensitivity) {
		field := fmt.Sprintf("uncertainty.sensitivity.%s", p)
		if !p.Valid() {
			return NewValidationError("uncertainty.sensitivity", p, "unknown parameter")
		}
		values := u.Sensitivity[p]
		if len(values) == 0 {
			return NewValidationError(field, 0, "needs at least one value")
		}
		for _, v := range values {
			if err := p.checkValue(field, costing, financial, v); err != nil {
				return err
			}
		}
	}
	for _, p := range sortedKeys(u.Ranges) {
		field := fmt.Sprintf("uncertainty.ranges.%s", p)
		if !p.Valid() {
			return NewValidationError("uncertainty.ranges", p, "unknown parameter")
		}
		r := u.Ranges[p]
		if !(r.Min <= r.Max) {
			return NewValidationError(field, r, "min must not exceed max")
		}
		for _, v := range []float64{r.Min, r.Max} {
			if err := p.checkValue(field, costing, financial, v); err != nil {
				return err
			}
		}
	}
	if u.Samples < 0 {
		return NewValidationError("uncertainty.samples", u.Samples, "must not be negative")
	}
	return nil
}

func sortedKeys[V any](m map[Parameter]V) []Parameter {
	keys := make([]Parameter, 0, len(m))
	for p := range m {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SensitivityRow is one single-parameter substitution versus the base case
type SensitivityRow struct {
	Parameter    Parameter `json:"parameter"`
	Value        float64   `json:"value"`
	NPV          float64   `json:"npv"`
	IRR          float64   `json:"irr"`
	NPVChangePct float64   `json:"npv_change_pct"`
	IRRChangePct float64   `json:"irr_change_pct"`
}

// MonteCarloSummary describes the sampled NPV/IRR distribution
type MonteCarloSummary struct {
	Samples                int     `json:"samples"`
	NPVMean                float64 `json:"npv_mean"`
	NPVStdDev              float64 `json:"npv_std"`
	NPVStdError            float64 `json:"npv_std_error"`
	NPVP5                  float64 `json:"npv_p5"`
	NPVP95                 float64 `json:"npv_p95"`
	IRRMean                float64 `json:"irr_mean"`
	IRRStdDev              float64 `json:"irr_std"`
	IRRP5                  float64 `json:"irr_p5"`
	IRRP95                 float64 `json:"irr_p95"`
	ProbabilityPositiveNPV float64 `json:"probability_positive_npv"`
}

// UncertaintyResult bundles the sensitivity table and the Monte Carlo distribution
type UncertaintyResult struct {
	BaseNPV     float64            `json:"base_npv"`
	BaseIRR     float64            `json:"base_irr"`
	Sensitivity []SensitivityRow   `json:"sensitivity,omitempty"`
	MonteCarlo  *MonteCarloSummary `json:"monte_carlo,omitempty"`
}
