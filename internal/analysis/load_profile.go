package analysis

import (
	"math"

	"hybrid-energy-platform/internal/models"
)

const (
	// Cooling load grows 5% per degree above this temperature
	coolingReferenceC    = 25.0
	coolingGainPerDegree = 0.05

	syntheticMeanTempC      = 30.0
	syntheticTempAmplitudeC = 8.0
	syntheticPeakTempHour   = 14
	syntheticPeakIrradiance = 1000.0
	sunriseHour             = 6
	sunsetHour              = 18
)

// SyntheticWeather returns a placeholder typical day used when no weather is supplied.
// It is a smooth sinusoid (temperature peaking at 14:00, irradiance zero outside 06:00-18:00),
// not climate data for any location.
func SyntheticWeather() models.WeatherSeries {
	w := models.WeatherSeries{
		TemperatureC:  make([]float64, models.HoursPerDay),
		IrradianceWm2: make([]float64, models.HoursPerDay),
	}
	for h := 0; h < models.HoursPerDay; h++ {
		phase := 2 * math.Pi * float64(h-(syntheticPeakTempHour-6)) / models.HoursPerDay
		w.TemperatureC[h] = syntheticMeanTempC + syntheticTempAmplitudeC*math.Sin(phase)

		if h >= sunriseHour && h <= sunsetHour {
			w.IrradianceWm2[h] = syntheticPeakIrradiance * math.Sin(math.Pi*float64(h-sunriseHour)/float64(sunsetHour-sunriseHour))
		}
	}
	return w
}

// GenerateLoadProfile synthesizes the 24-hour demand profile of an equipment inventory.
// Without weather the synthetic placeholder stands in, including for the cooling correction,
// and the returned source says so.
func GenerateLoadProfile(equipment []models.Equipment, weather *models.WeatherSeries) ([]models.LoadProfilePoint, models.WeatherSource) {
	source := models.WeatherSupplied
	w := weather
	if w == nil {
		synthetic := SyntheticWeather()
		w = &synthetic
		source = models.WeatherSynthetic
	}

	profile := make([]models.LoadProfilePoint, models.HoursPerDay)
	for h := 0; h < models.HoursPerDay; h++ {
		temperature := w.TemperatureC[h]
		point := models.LoadProfilePoint{
			Hour:               h,
			EquipmentBreakdown: make(map[string]float64, len(equipment)),
			TemperatureC:       temperature,
			IrradianceWm2:      w.IrradianceWm2[h],
		}

		for _, e := range equipment {
			kw := e.PowerRatingW * float64(e.Quantity) * UsageFactor(e.Category, h) * e.Efficiency / 1000

			if e.Category == models.CategoryCooling && temperature > coolingReferenceC {
				kw += kw * coolingGainPerDegree * (temperature - coolingReferenceC)
			}

			point.DemandKW += kw
			point.EquipmentBreakdown[breakdownKey(e)] += kw
		}

		profile[h] = point
	}

	return profile, source
}

func breakdownKey(e models.Equipment) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}
