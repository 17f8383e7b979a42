package models

import (
	"math"
	"time"
)

// FacilityType selects facility-specific recommendations
type FacilityType string

const (
	FacilityHealthClinic FacilityType = "health_clinic"
	FacilitySchool       FacilityType = "school"
	FacilityOffice       FacilityType = "office"
)

// EnergyAnalysisOptions tunes demand synthesis and system sizing
type EnergyAnalysisOptions struct {
	SafetyMargin         float64       `json:"safety_margin" yaml:"safety_margin"`
	SystemEfficiency     float64       `json:"system_efficiency" yaml:"system_efficiency"`
	BatteryAutonomyHours float64       `json:"battery_autonomy_hours" yaml:"battery_autonomy_hours"`
	PeakSunHours         float64       `json:"peak_sun_hours" yaml:"peak_sun_hours"`
	FacilityType         FacilityType  `json:"facility_type,omitempty" yaml:"facility_type,omitempty"`
	OptimizerTimeout     time.Duration `json:"-" yaml:"optimizer_timeout"`
}

// DefaultAnalysisOptions returns the options used when a request omits them
func DefaultAnalysisOptions() EnergyAnalysisOptions {
	return EnergyAnalysisOptions{
		SafetyMargin:         1.25,
		SystemEfficiency:     0.85,
		BatteryAutonomyHours: 24,
		PeakSunHours:         6,
		OptimizerTimeout:     5 * time.Second,
	}
}

// Validate enforces the option ranges accepted at the boundary
func (o EnergyAnalysisOptions) Validate() error {
	if !(o.SafetyMargin >= 1.0 && o.SafetyMargin <= 2.0) {
		return NewValidationError("options.safety_margin", o.SafetyMargin, "must be between 1.0 and 2.0")
	}
	if !(o.SystemEfficiency >= 0.5 && o.SystemEfficiency <= 1.0) {
		return NewValidationError("options.system_efficiency", o.SystemEfficiency, "must be between 0.5 and 1.0")
	}
	if !(o.BatteryAutonomyHours >= 0) || math.IsInf(o.BatteryAutonomyHours, 0) {
		return NewValidationError("options.battery_autonomy_hours", o.BatteryAutonomyHours, "must be zero or positive")
	}
	if !(o.PeakSunHours > 0 && o.PeakSunHours <= 24) {
		return NewValidationError("options.peak_sun_hours", o.PeakSunHours, "must be between 0 and 24")
	}
	if o.OptimizerTimeout < 0 {
		return NewValidationError("options.optimizer_timeout", o.OptimizerTimeout, "must not be negative")
	}
	return nil
}

// CostingMethod selects how the renewable system's initial cost is built up
type CostingMethod string

const (
	CostingPerWatt           CostingMethod = "per_watt"
	CostingFixedPlusVariable CostingMethod = "fixed_plus_variable"
	CostingComponentBased    CostingMethod = "component_based"
)

// CostingParameters holds unit costs for the renewable system and the diesel generator
// A zero BatteryCostPerKWh means "use the configured chemistry's default"
type CostingParameters struct {
	Method               CostingMethod `json:"method" yaml:"method"`
	PanelCostPerW        float64       `json:"panel_cost_per_watt" yaml:"panel_cost_per_watt"`
	BatteryCostPerKWh    float64       `json:"battery_cost_per_kwh" yaml:"battery_cost_per_kwh"`
	InverterCostPerKW    float64       `json:"inverter_cost_per_kw" yaml:"inverter_cost_per_kw"`
	StructureCostPerW    float64       `json:"structure_cost_per_watt" yaml:"structure_cost_per_watt"`
	FixedCost            float64       `json:"fixed_cost" yaml:"fixed_cost"`
	InstallationFraction float64       `json:"installation_fraction" yaml:"installation_fraction"`
	PanelRatingW         float64       `json:"panel_rating_w" yaml:"panel_rating_w"`
	PanelCount           int           `json:"panel_count,omitempty" yaml:"panel_count,omitempty"`
	GeneratorCostPerKW   float64       `json:"generator_cost_per_kw" yaml:"generator_cost_per_kw"`
}

// DefaultCostingParameters returns per-watt costing with the documented unit prices
func DefaultCostingParameters() CostingParameters {
	return CostingParameters{
		Method:               CostingPerWatt,
		PanelCostPerW:        0.40,
		InverterCostPerKW:    300,
		StructureCostPerW:    0.10,
		FixedCost:            2000,
		InstallationFraction: 0.10,
		PanelRatingW:         400,
		GeneratorCostPerKW:   500,
	}
}

// BatteryCost resolves the battery unit price against the chemistry default
func (c CostingParameters) BatteryCost(chemistry BatteryChemistry) float64 {
	if c.BatteryCostPerKWh > 0 {
		return c.BatteryCostPerKWh
	}
	return chemistry.DefaultCostPerKWh()
}

// Validate enforces positive unit prices and a known costing method
func (c CostingParameters) Validate() error {
	switch c.Method {
	case CostingPerWatt, CostingFixedPlusVariable, CostingComponentBased:
	default:
		return NewValidationError("costing.method", c.Method, "must be one of per_watt, fixed_plus_variable, component_based")
	}
	positives := []struct {
		field string
		value float64
	}{
		{"costing.panel_cost_per_watt", c.PanelCostPerW},
		{"costing.inverter_cost_per_kw", c.InverterCostPerKW},
		{"costing.panel_rating_w", c.PanelRatingW},
		{"costing.generator_cost_per_kw", c.GeneratorCostPerKW},
	}
	for _, p := range positives {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return NewValidationError(p.field, p.value, "must be greater than 0")
		}
	}
	nonNegatives := []struct {
		field string
		value float64
	}{
		{"costing.battery_cost_per_kwh", c.BatteryCostPerKWh},
		{"costing.structure_cost_per_watt", c.StructureCostPerW},
		{"costing.fixed_cost", c.FixedCost},
		{"costing.installation_fraction", c.InstallationFraction},
	}
	for _, p := range nonNegatives {
		if !(p.value >= 0) || math.IsInf(p.value, 0) {
			return NewValidationError(p.field, p.value, "must not be negative")
		}
	}
	if c.PanelCount < 0 {
		return NewValidationError("costing.panel_count", c.PanelCount, "must not be negative")
	}
	return nil
}

// BatteryChemistry only influences the default battery price
type BatteryChemistry string

const (
	ChemistryLithium  BatteryChemistry = "lithium"
	ChemistryLeadAcid BatteryChemistry = "lead_acid"
)

// DefaultCostPerKWh returns the catalogue price for the chemistry
func (b BatteryChemistry) DefaultCostPerKWh() float64 {
	if b == ChemistryLeadAcid {
		return 150
	}
	return 300
}

// BatterySizingStrategy names the rule that sets the minimum battery capacity
type BatterySizingStrategy string

const (
	// BatteryHoursFraction: daily consumption × autonomy hours / 24
	BatteryHoursFraction BatterySizingStrategy = "hours_fraction"
	// BatteryAutonomyOverDoD: daily consumption × autonomy factor / depth of discharge
	BatteryAutonomyOverDoD BatterySizingStrategy = "autonomy_factor_over_dod"
)

// SystemConfiguration describes battery and inverter technology choices
type SystemConfiguration struct {
	BatteryAutonomyFactor float64               `json:"battery_autonomy_factor" yaml:"battery_autonomy_factor"`
	DepthOfDischarge      float64               `json:"depth_of_discharge" yaml:"depth_of_discharge"`
	BatteryChemistry      BatteryChemistry      `json:"battery_chemistry" yaml:"battery_chemistry"`
	InverterEfficiency    float64               `json:"inverter_efficiency" yaml:"inverter_efficiency"`
	BatterySizing         BatterySizingStrategy `json:"battery_sizing" yaml:"battery_sizing"`
}

// DefaultSystemConfiguration returns a lithium bank sized with the hours-fraction rule
func DefaultSystemConfiguration() SystemConfiguration {
	return SystemConfiguration{
		BatteryAutonomyFactor: 1.5,
		DepthOfDischarge:      0.8,
		BatteryChemistry:      ChemistryLithium,
		InverterEfficiency:    0.95,
		BatterySizing:         BatteryHoursFraction,
	}
}

// Validate enforces the configuration ranges accepted at the boundary
func (s SystemConfiguration) Validate() error {
	if !(s.BatteryAutonomyFactor >= 0) || math.IsInf(s.BatteryAutonomyFactor, 0) {
		return NewValidationError("system.battery_autonomy_factor", s.BatteryAutonomyFactor, "must be zero or positive")
	}
	if !(s.DepthOfDischarge > 0 && s.DepthOfDischarge <= 1) {
		return NewValidationError("system.depth_of_discharge", s.DepthOfDischarge, "must be in (0, 1]")
	}
	if s.BatteryChemistry != ChemistryLithium && s.BatteryChemistry != ChemistryLeadAcid {
		return NewValidationError("system.battery_chemistry", s.BatteryChemistry, "must be lithium or lead_acid")
	}
	if !(s.InverterEfficiency > 0 && s.InverterEfficiency <= 1) {
		return NewValidationError("system.inverter_efficiency", s.InverterEfficiency, "must be in (0, 1]")
	}
	if s.BatterySizing != BatteryHoursFraction && s.BatterySizing != BatteryAutonomyOverDoD {
		return NewValidationError("system.battery_sizing", s.BatterySizing, "must be hours_fraction or autonomy_factor_over_dod")
	}
	return nil
}

// FinancialParameters drive the lifecycle cash-flow comparison
type FinancialParameters struct {
	DiscountRate                float64 `json:"discount_rate" yaml:"discount_rate"`
	ProjectLifetimeYears        int     `json:"project_lifetime_years" yaml:"project_lifetime_years"`
	DieselFuelCostPerLiter      float64 `json:"diesel_fuel_cost_per_liter" yaml:"diesel_fuel_cost_per_liter"`
	DieselEfficiencyKWhPerLiter float64 `json:"diesel_efficiency_kwh_per_liter" yaml:"diesel_efficiency_kwh_per_liter"`
	InflationRate               float64 `json:"inflation_rate" yaml:"inflation_rate"`
	FuelEscalationRate          float64 `json:"fuel_escalation_rate" yaml:"fuel_escalation_rate"`
	MaintenanceRate             float64 `json:"maintenance_rate" yaml:"maintenance_rate"`
	DieselMaintenancePerKWh     float64 `json:"diesel_maintenance_per_kwh" yaml:"diesel_maintenance_per_kwh"`
}

// DefaultFinancialParameters returns the documented financial defaults
func DefaultFinancialParameters() FinancialParameters {
	return FinancialParameters{
		DiscountRate:                0.08,
		ProjectLifetimeYears:        20,
		DieselFuelCostPerLiter:      1.5,
		DieselEfficiencyKWhPerLiter: 3.0,
		InflationRate:               0.02,
		FuelEscalationRate:          0.03,
		MaintenanceRate:             0.02,
		DieselMaintenancePerKWh:     0.05,
	}
}

// Validate enforces the financial ranges accepted at the boundary
func (f FinancialParameters) Validate() error {
	if !(f.DiscountRate >= 0 && f.DiscountRate < 1) {
		return NewValidationError("financial.discount_rate", f.DiscountRate, "must be in [0, 1)")
	}
	if f.ProjectLifetimeYears < 1 || f.ProjectLifetimeYears > 50 {
		return NewValidationError("financial.project_lifetime_years", f.ProjectLifetimeYears, "must be between 1 and 50")
	}
	if !(f.DieselFuelCostPerLiter > 0) || math.IsInf(f.DieselFuelCostPerLiter, 0) {
		return NewValidationError("financial.diesel_fuel_cost_per_liter", f.DieselFuelCostPerLiter, "must be greater than 0")
	}
	if !(f.DieselEfficiencyKWhPerLiter > 0) || math.IsInf(f.DieselEfficiencyKWhPerLiter, 0) {
		return NewValidationError("financial.diesel_efficiency_kwh_per_liter", f.DieselEfficiencyKWhPerLiter, "must be greater than 0")
	}
	if !(f.InflationRate >= 0 && f.InflationRate < 1) {
		return NewValidationError("financial.inflation_rate", f.InflationRate, "must be in [0, 1)")
	}
	if !(f.FuelEscalationRate >= 0 && f.FuelEscalationRate < 1) {
		return NewValidationError("financial.fuel_escalation_rate", f.FuelEscalationRate, "must be in [0, 1)")
	}
	if !(f.MaintenanceRate >= 0 && f.MaintenanceRate <= 1) {
		return NewValidationError("financial.maintenance_rate", f.MaintenanceRate, "must be in [0, 1]")
	}
	if !(f.DieselMaintenancePerKWh >= 0) || math.IsInf(f.DieselMaintenancePerKWh, 0) {
		return NewValidationError("financial.diesel_maintenance_per_kwh", f.DieselMaintenancePerKWh, "must not be negative")
	}
	return nil
}
