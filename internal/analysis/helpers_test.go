package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hybrid-energy-platform/internal/models"
)

// ledLighting is a single lighting line: 10 × 20 W tubes at 90% efficiency
func ledLighting() []models.Equipment {
	return []models.Equipment{
		{
			ID:           "eq-1",
			Name:         "LED tube",
			Category:     models.CategoryLighting,
			PowerRatingW: 20,
			HoursPerDay:  12,
			Efficiency:   0.9,
			Priority:     models.PriorityImportant,
			Quantity:     10,
		},
	}
}

func ruralClinic() []models.Equipment {
	return []models.Equipment{
		{ID: "m1", Name: "Vaccine fridge", Category: models.CategoryMedical, PowerRatingW: 300, HoursPerDay: 24, Efficiency: 0.9, Priority: models.PriorityEssential, Quantity: 2},
		{ID: "m2", Name: "Oxygen concentrator", Category: models.CategoryMedical, PowerRatingW: 600, HoursPerDay: 12, Efficiency: 0.85, Priority: models.PriorityEssential, Quantity: 1},
		{ID: "l1", Name: "Ward lighting", Category: models.CategoryLighting, PowerRatingW: 18, HoursPerDay: 12, Efficiency: 0.9, Priority: models.PriorityImportant, Quantity: 20},
		{ID: "c1", Name: "Ceiling fan", Category: models.CategoryCooling, PowerRatingW: 75, HoursPerDay: 10, Efficiency: 0.8, Priority: models.PriorityOptional, Quantity: 6},
		{ID: "p1", Name: "Laptop", Category: models.CategoryComputing, PowerRatingW: 65, HoursPerDay: 8, Efficiency: 0.9, Priority: models.PriorityImportant, Quantity: 3},
	}
}

func flatWeather(tempC float64) *models.WeatherSeries {
	w := &models.WeatherSeries{
		TemperatureC:  make([]float64, models.HoursPerDay),
		IrradianceWm2: make([]float64, models.HoursPerDay),
	}
	for h := range w.TemperatureC {
		w.TemperatureC[h] = tempC
	}
	return w
}

// clinicScenario runs the demand and sizing stages for the rural clinic with defaults
func clinicScenario(t *testing.T) Scenario {
	t.Helper()

	equipment := ruralClinic()
	options := models.DefaultAnalysisOptions()
	costing := models.DefaultCostingParameters()
	system := models.DefaultSystemConfiguration()

	profile, _ := GenerateLoadProfile(equipment, nil)
	summary := SummarizeDemand(profile, equipment)
	require.Greater(t, summary.PeakDemandKW, 0.0)

	outcome := SizeSystem(context.Background(), summary, options, costing, system)

	return Scenario{
		Summary:   summary,
		Sizing:    outcome.Sizing,
		Options:   options,
		Costing:   costing,
		System:    system,
		Financial: models.DefaultFinancialParameters(),
	}
}
