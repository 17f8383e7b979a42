package models

// CashFlowSeries is indexed by project year, year 0 holding the initial investment
type CashFlowSeries []float64

// Sum returns the undiscounted total of the series
func (c CashFlowSeries) Sum() float64 {
	total := 0.0
	for _, v := range c {
		total += v
	}
	return total
}

// SystemFinancials is the lifecycle cost view of one supply option
type SystemFinancials struct {
	InitialCost   float64        `json:"initial_cost"`
	AnnualCost    float64        `json:"annual_cost"`
	CashFlows     CashFlowSeries `json:"cash_flows"`
	NPV           float64        `json:"npv"`
	LifecycleCost float64        `json:"lifecycle_cost"`
	LCOE          float64        `json:"lcoe"`
}

// Comparison holds the renewable-minus-diesel deltas
type Comparison struct {
	NPVDifference   float64 `json:"npv_difference"`
	IRRDifference   float64 `json:"irr_difference"`
	LCOEDifference  float64 `json:"lcoe_difference"`
	PaybackYears    float64 `json:"payback_period_years"`
	LifetimeSavings float64 `json:"lifetime_savings"`
}

// EnvironmentalImpact quantifies the diesel displaced over the project lifetime
type EnvironmentalImpact struct {
	DieselDisplacedLitersPerDay float64 `json:"diesel_displaced_liters_per_day"`
	CO2AvoidedKg                float64 `json:"co2_avoided_kg"`
	TreesEquivalent             float64 `json:"trees_equivalent"`
	LandSavedM2                 float64 `json:"land_saved_m2"`
	WaterSavedLiters            float64 `json:"water_saved_liters"`
}

// FinancialResult compares the renewable system with the diesel baseline
// NPV and IRR refer to the incremental investment over the baseline
type FinancialResult struct {
	Renewable     SystemFinancials    `json:"renewable"`
	Diesel        SystemFinancials    `json:"diesel"`
	NPV           float64             `json:"npv"`
	IRR           float64             `json:"irr"`
	IRRConverged  bool                `json:"irr_converged"`
	LCOE          float64             `json:"lcoe"`
	LifecycleCost float64             `json:"lifecycle_cost"`
	Comparison    Comparison          `json:"comparison"`
	Environmental EnvironmentalImpact `json:"environmental_impact"`
}
