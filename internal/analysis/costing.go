package analysis

import "hybrid-energy-platform/internal/models"

// InitialCost prices the renewable system under the configured costing method
func InitialCost(sizing models.SystemSizing, costing models.CostingParameters, system models.SystemConfiguration) float64 {
	pvW := sizing.PVSystemSizeKW * 1000
	storage := sizing.BatteryCapacityKWh * costing.BatteryCost(system.BatteryChemistry)
	inverter := sizing.InverterSizeKW * costing.InverterCostPerKW

	switch costing.Method {
	case models.CostingFixedPlusVariable:
		return costing.FixedCost + pvW*costing.PanelCostPerW + storage + inverter

	case models.CostingComponentBased:
		panels := sizing.PanelCount
		if costing.PanelCount > 0 {
			panels = costing.PanelCount
		}
		hardware := float64(panels)*costing.PanelRatingW*costing.PanelCostPerW +
			storage +
			inverter +
			pvW*costing.StructureCostPerW +
			costing.FixedCost
		return hardware * (1 + costing.InstallationFraction)

	default:
		return pvW*(costing.PanelCostPerW+costing.StructureCostPerW) + storage + inverter
	}
}

// DieselGeneratorKW sizes the baseline generator to carry peak demand with the safety margin
func DieselGeneratorKW(summary models.DemandSummary, options models.EnergyAnalysisOptions) float64 {
	return summary.PeakDemandKW * options.SafetyMargin
}
