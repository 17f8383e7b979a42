package analysis

import "hybrid-energy-platform/internal/models"

const (
	co2KgPerDieselLiter = 2.68
	co2KgPerTreePerYear = 22.0

	// Linear proxies per lifetime kWh served without diesel
	landM2PerKWh      = 0.0004
	waterLitersPerKWh = 0.9
)

// EnvironmentalImpact estimates what displacing diesel generation saves over the project
func EnvironmentalImpact(summary models.DemandSummary, financial models.FinancialParameters) models.EnvironmentalImpact {
	impact := models.EnvironmentalImpact{}
	if financial.DieselEfficiencyKWhPerLiter > 0 {
		impact.DieselDisplacedLitersPerDay = summary.DailyConsumptionKWh / financial.DieselEfficiencyKWhPerLiter
	}

	years := float64(financial.ProjectLifetimeYears)
	impact.CO2AvoidedKg = impact.DieselDisplacedLitersPerDay * co2KgPerDieselLiter * daysPerYear * years
	if years > 0 {
		impact.TreesEquivalent = impact.CO2AvoidedKg / (co2KgPerTreePerYear * years)
	}

	lifetimeKWh := summary.AnnualConsumptionKWh * years
	impact.LandSavedM2 = lifetimeKWh * landM2PerKWh
	impact.WaterSavedLiters = lifetimeKWh * waterLitersPerKWh
	return impact
}
