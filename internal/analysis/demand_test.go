package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hybrid-energy-platform/internal/models"
)

func TestSummarizeDemand_LightingScenario(t *testing.T) {
	equipment := ledLighting()
	profile, _ := GenerateLoadProfile(equipment, nil)

	summary := SummarizeDemand(profile, equipment)

	assert.InDelta(t, 0.18, summary.PeakDemandKW, 1e-12)
	assert.InDelta(t, 3.042, summary.DailyConsumptionKWh, 1e-9)
	assert.Equal(t, summary.DailyConsumptionKWh*365, summary.AnnualConsumptionKWh)
	assert.InDelta(t, 1110.33, summary.AnnualConsumptionKWh, 1e-6)
	assert.InDelta(t, 0.7042, summary.LoadFactor, 1e-4)
	assert.Equal(t, summary.AverageDemandKW/summary.PeakDemandKW, summary.LoadFactor)
	assert.InDelta(t, 0.036, summary.BaseLoadKW, 1e-12)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 18, 19, 20, 21, 22, 23}, summary.PeakHours)

	// rated 200 W, not essential
	assert.Zero(t, summary.CriticalLoadKW)
	assert.InDelta(t, 0.2, summary.NonCriticalLoadKW, 1e-12)
	assert.Greater(t, summary.LoadVariability, 0.0)
}

func TestSummarizeDemand_Empty(t *testing.T) {
	profile, _ := GenerateLoadProfile(nil, nil)

	summary := SummarizeDemand(profile, nil)

	assert.Zero(t, summary.PeakDemandKW)
	assert.Zero(t, summary.DailyConsumptionKWh)
	assert.Zero(t, summary.AnnualConsumptionKWh)
	assert.Zero(t, summary.LoadFactor)
	assert.Zero(t, summary.LoadVariability)
	assert.Empty(t, summary.PeakHours)
}

func TestSummarizeDemand_LoadFactorBounds(t *testing.T) {
	equipment := ruralClinic()
	profile, _ := GenerateLoadProfile(equipment, flatWeather(32))

	summary := SummarizeDemand(profile, equipment)

	assert.Greater(t, summary.LoadFactor, 0.0)
	assert.LessOrEqual(t, summary.LoadFactor, 1.0)
	assert.Equal(t, summary.DailyConsumptionKWh*365, summary.AnnualConsumptionKWh)
	assert.InDelta(t, 0.6+0.6, summary.CriticalLoadKW, 1e-12)
	assert.InDelta(t, 0.36+0.45+0.195, summary.NonCriticalLoadKW, 1e-12)
}

func TestSummarizeDemand_FlatLoad(t *testing.T) {
	fridge := []models.Equipment{
		{ID: "f1", Name: "Fridge", Category: models.Category("refrigeration"), PowerRatingW: 400, HoursPerDay: 24, Efficiency: 1, Priority: models.PriorityEssential, Quantity: 1},
	}
	profile, _ := GenerateLoadProfile(fridge, nil)

	summary := SummarizeDemand(profile, fridge)

	assert.InDelta(t, 0.2, summary.PeakDemandKW, 1e-12)
	assert.InDelta(t, 1.0, summary.LoadFactor, 1e-12)
	assert.InDelta(t, 0.0, summary.LoadVariability, 1e-12)
	// every hour of a flat profile sits at the peak
	assert.Len(t, summary.PeakHours, 24)
	assert.InDelta(t, 0.4, summary.CriticalLoadKW, 1e-12)
}

func TestCategoryBreakdown(t *testing.T) {
	breakdown := CategoryBreakdown(ruralClinic())

	assert.InDelta(t, 1.2, breakdown[models.CategoryMedical], 1e-12)
	assert.InDelta(t, 0.36, breakdown[models.CategoryLighting], 1e-12)
	assert.InDelta(t, 0.45, breakdown[models.CategoryCooling], 1e-12)
	assert.InDelta(t, 0.195, breakdown[models.CategoryComputing], 1e-12)
	assert.InDelta(t, 2.205, breakdown.Total(), 1e-12)
	assert.InDelta(t, 0.45/2.205, breakdown.Share(models.CategoryCooling), 1e-12)
	assert.Zero(t, breakdown.Share(models.CategoryKitchen))
}
