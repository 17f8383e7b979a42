package models

// HoursPerDay is the resolution of every profile handled by the platform
const HoursPerDay = 24

// WeatherSource tells whether a profile was driven by supplied or placeholder weather
type WeatherSource string

const (
	WeatherSupplied  WeatherSource = "supplied"
	WeatherSynthetic WeatherSource = "synthetic"
)

// WeatherSeries is a typical-day hourly weather profile
// Temperature and irradiance are required; wind and humidity may be omitted entirely
type WeatherSeries struct {
	TemperatureC  []float64 `json:"temperature" yaml:"temperature"`
	IrradianceWm2 []float64 `json:"solar_irradiance" yaml:"solar_irradiance"`
	WindSpeedMs   []float64 `json:"wind_speed,omitempty" yaml:"wind_speed,omitempty"`
	HumidityPct   []float64 `json:"humidity,omitempty" yaml:"humidity,omitempty"`
}

// Validate rejects any series whose arrays are not exactly one value per hour
func (w *WeatherSeries) Validate() error {
	if len(w.TemperatureC) != HoursPerDay {
		return NewValidationError("weather.temperature", len(w.TemperatureC), "must contain exactly 24 hourly values")
	}
	if len(w.IrradianceWm2) != HoursPerDay {
		return NewValidationError("weather.solar_irradiance", len(w.IrradianceWm2), "must contain exactly 24 hourly values")
	}
	if w.WindSpeedMs != nil && len(w.WindSpeedMs) != HoursPerDay {
		return NewValidationError("weather.wind_speed", len(w.WindSpeedMs), "must contain exactly 24 hourly values when present")
	}
	if w.HumidityPct != nil && len(w.HumidityPct) != HoursPerDay {
		return NewValidationError("weather.humidity", len(w.HumidityPct), "must contain exactly 24 hourly values when present")
	}
	for h, v := range w.IrradianceWm2 {
		if v < 0 {
			return NewValidationError("weather.solar_irradiance", h, "must not be negative")
		}
	}
	return nil
}
