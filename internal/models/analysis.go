package models

import "time"

// AnalysisRequest is everything one analysis needs
// Unset sections are expected to be pre-filled with defaults by NewAnalysisRequest
type AnalysisRequest struct {
	FacilityID  string                `json:"facility_id,omitempty" yaml:"facility_id,omitempty"`
	Equipment   []Equipment           `json:"equipment" yaml:"equipment"`
	Weather     *WeatherSeries        `json:"weather,omitempty" yaml:"weather,omitempty"`
	Options     EnergyAnalysisOptions `json:"options" yaml:"options"`
	Costing     CostingParameters     `json:"costing" yaml:"costing"`
	System      SystemConfiguration   `json:"system" yaml:"system"`
	Financial   FinancialParameters   `json:"financial" yaml:"financial"`
	Uncertainty *UncertaintyRequest   `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
}

// NewAnalysisRequest returns a request whose parameter sections hold the defaults,
// ready to be decoded onto
func NewAnalysisRequest() *AnalysisRequest {
	return &AnalysisRequest{
		Equipment: []Equipment{},
		Options:   DefaultAnalysisOptions(),
		Costing:   DefaultCostingParameters(),
		System:    DefaultSystemConfiguration(),
		Financial: DefaultFinancialParameters(),
	}
}

// Validate runs every boundary check; the first failure wins
func (r *AnalysisRequest) Validate() error {
	if err := ValidateEquipment(r.Equipment); err != nil {
		return err
	}
	if r.Weather != nil {
		if err := r.Weather.Validate(); err != nil {
			return err
		}
	}
	if err := r.Options.Validate(); err != nil {
		return err
	}
	if err := r.Costing.Validate(); err != nil {
		return err
	}
	if err := r.System.Validate(); err != nil {
		return err
	}
	if err := r.Financial.Validate(); err != nil {
		return err
	}
	if r.Uncertainty != nil {
		if err := r.Uncertainty.Validate(r.Costing, r.Financial); err != nil {
			return err
		}
	}
	return nil
}

// AnalysisReport is the full output of one analysis
type AnalysisReport struct {
	AnalysisID        string             `json:"analysis_id"`
	FacilityID        string             `json:"facility_id,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
	WeatherSource     WeatherSource      `json:"weather_source"`
	LoadProfile       []LoadProfilePoint `json:"load_profile"`
	Summary           DemandSummary      `json:"demand_summary"`
	CategoryBreakdown CategoryBreakdown  `json:"category_breakdown"`
	Sizing            SizingOutcome      `json:"system_sizing"`
	Financial         *FinancialResult   `json:"financial_analysis"`
	Uncertainty       *UncertaintyResult `json:"uncertainty,omitempty"`
	Recommendations   []string           `json:"recommendations"`
}
