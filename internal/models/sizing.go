package models

// SystemSizing is the hybrid PV/battery/generator design
type SystemSizing struct {
	PVSystemSizeKW       float64 `json:"pv_system_size_kw"`
	BatteryCapacityKWh   float64 `json:"battery_capacity_kwh"`
	InverterSizeKW       float64 `json:"inverter_size_kw"`
	GeneratorSizeKW      float64 `json:"generator_size_kw"`
	PanelCount           int     `json:"panel_count"`
	BatteryBankVoltage   int     `json:"battery_bank_voltage"`
	ChargeControllerAmps float64 `json:"charge_controller_amps"`
}

// SizingStatus tells whether the optimizer's answer or the fallback rule was used
type SizingStatus string

const (
	SizingOptimized SizingStatus = "optimized"
	SizingFallback  SizingStatus = "fallback"
)

// SizingOutcome carries the sizing plus how it was obtained
// Fallback is a normal result, not an error
type SizingOutcome struct {
	Status              SizingStatus `json:"status"`
	Reason              string       `json:"reason,omitempty"`
	Sizing              SystemSizing `json:"sizing"`
	BatteryFloorKWh     float64      `json:"battery_floor_kwh"`
	ObjectiveValue      float64      `json:"objective_value"`
	Iterations          int          `json:"iterations"`
	FunctionEvaluations int          `json:"function_evaluations"`
}

// Optimized reports whether the optimizer produced the sizing
func (o SizingOutcome) Optimized() bool {
	return o.Status == SizingOptimized
}
