package models

// LoadProfilePoint is the facility demand for one hour of the typical day
type LoadProfilePoint struct {
	Hour               int                `json:"hour"`
	DemandKW           float64            `json:"demand_kw"`
	EquipmentBreakdown map[string]float64 `json:"equipment_breakdown"`
	TemperatureC       float64            `json:"temperature"`
	IrradianceWm2      float64            `json:"irradiance"`
}

// DemandSummary aggregates a 24-point load profile
type DemandSummary struct {
	PeakDemandKW         float64 `json:"peak_demand_kw"`
	AverageDemandKW      float64 `json:"average_demand_kw"`
	DailyConsumptionKWh  float64 `json:"daily_consumption_kwh"`
	AnnualConsumptionKWh float64 `json:"annual_consumption_kwh"`
	LoadFactor           float64 `json:"load_factor"`
	BaseLoadKW           float64 `json:"base_load_kw"`
	LoadVariability      float64 `json:"load_variability"`
	CriticalLoadKW       float64 `json:"critical_load_kw"`
	NonCriticalLoadKW    float64 `json:"non_critical_load_kw"`
	PeakHours            []int   `json:"peak_hours"`
}

// CategoryBreakdown is the static rated load per category in kW
type CategoryBreakdown map[Category]float64

// Total sums the rated load over all categories
func (b CategoryBreakdown) Total() float64 {
	total := 0.0
	for _, kw := range b {
		total += kw
	}
	return total
}

// Share returns the category's fraction of the total, 0 when nothing is rated
func (b CategoryBreakdown) Share(c Category) float64 {
	total := b.Total()
	if total == 0 {
		return 0
	}
	return b[c] / total
}
