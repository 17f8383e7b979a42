package models

import "time"

// Facility is a surveyed site whose inventory and typical-day weather are stored
type Facility struct {
	ID           string       `json:"facility_id" db:"facility_id"`
	Name         string       `json:"name" db:"name"`
	FacilityType FacilityType `json:"facility_type" db:"facility_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// WeatherHour is one stored hour of a facility's typical-day weather
type WeatherHour struct {
	Hour          int      `db:"hour"`
	TemperatureC  float64  `db:"temperature_c"`
	IrradianceWm2 float64  `db:"irradiance_wm2"`
	WindSpeedMs   *float64 `db:"wind_speed_ms"`
	HumidityPct   *float64 `db:"humidity_pct"`
}

// WeatherFromHours assembles stored hours into a series. Optional arrays are only populated
// when every hour carries a value.
func WeatherFromHours(hours []WeatherHour) (*WeatherSeries, error) {
	if len(hours) != HoursPerDay {
		return nil, NewValidationError("weather.hours", len(hours), "must contain exactly 24 hourly rows")
	}

	w := &WeatherSeries{
		TemperatureC:  make([]float64, HoursPerDay),
		IrradianceWm2: make([]float64, HoursPerDay),
	}
	wind := make([]float64, HoursPerDay)
	humidity := make([]float64, HoursPerDay)
	haveWind, haveHumidity := true, true

	seen := make([]bool, HoursPerDay)
	for _, h := range hours {
		if h.Hour < 0 || h.Hour >= HoursPerDay || seen[h.Hour] {
			return nil, NewValidationError("weather.hours", h.Hour, "hours must be 0..23 without repeats")
		}
		seen[h.Hour] = true

		w.TemperatureC[h.Hour] = h.TemperatureC
		w.IrradianceWm2[h.Hour] = h.IrradianceWm2
		if h.WindSpeedMs != nil {
			wind[h.Hour] = *h.WindSpeedMs
		} else {
			haveWind = false
		}
		if h.HumidityPct != nil {
			humidity[h.Hour] = *h.HumidityPct
		} else {
			haveHumidity = false
		}
	}

	if haveWind {
		w.WindSpeedMs = wind
	}
	if haveHumidity {
		w.HumidityPct = humidity
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Hours flattens a series into storable rows
func (w *WeatherSeries) Hours() []WeatherHour {
	hours := make([]WeatherHour, len(w.TemperatureC))
	for h := range hours {
		hours[h] = WeatherHour{Hour: h, TemperatureC: w.TemperatureC[h], IrradianceWm2: w.IrradianceWm2[h]}
		if len(w.WindSpeedMs) == len(hours) {
			v := w.WindSpeedMs[h]
			hours[h].WindSpeedMs = &v
		}
		if len(w.HumidityPct) == len(hours) {
			v := w.HumidityPct[h]
			hours[h].HumidityPct = &v
		}
	}
	return hours
}

// FacilitySurvey is the on-disk form of one facility: identity, inventory and optional weather
type FacilitySurvey struct {
	FacilityID   string         `json:"facility_id" yaml:"facility_id"`
	Name         string         `json:"name" yaml:"name"`
	FacilityType FacilityType   `json:"facility_type" yaml:"facility_type"`
	Equipment    []Equipment    `json:"equipment" yaml:"equipment"`
	Weather      *WeatherSeries `json:"weather,omitempty" yaml:"weather,omitempty"`
}

// Validate checks the survey before anything is stored
func (s *FacilitySurvey) Validate() error {
	if s.FacilityID == "" {
		return NewValidationError("facility_id", s.FacilityID, "is required")
	}
	if err := ValidateEquipment(s.Equipment); err != nil {
		return err
	}
	if s.Weather != nil {
		return s.Weather.Validate()
	}
	return nil
}
