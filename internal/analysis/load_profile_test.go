package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hybrid-energy-platform/internal/models"
)

func TestUsageFactor(t *testing.T) {
	tests := []struct {
		name     string
		category models.Category
		hour     int
		want     float64
	}{
		{"lighting night", models.CategoryLighting, 2, 1.0},
		{"lighting evening", models.CategoryLighting, 18, 1.0},
		{"lighting dawn", models.CategoryLighting, 7, 0.7},
		{"lighting late afternoon", models.CategoryLighting, 16, 0.7},
		{"lighting dusk", models.CategoryLighting, 17, 0.7},
		{"lighting midday", models.CategoryLighting, 12, 0.2},
		{"medical day", models.CategoryMedical, 18, 1.0},
		{"medical evening", models.CategoryMedical, 22, 0.6},
		{"medical night", models.CategoryMedical, 3, 0.3},
		{"cooling afternoon", models.CategoryCooling, 16, 1.0},
		{"cooling morning ramp", models.CategoryCooling, 9, 0.7},
		{"cooling evening ramp", models.CategoryCooling, 20, 0.7},
		{"cooling night", models.CategoryCooling, 23, 0.3},
		{"computing office hours", models.CategoryComputing, 8, 1.0},
		{"computing evening", models.CategoryComputing, 22, 0.5},
		{"computing night", models.CategoryComputing, 5, 0.1},
		{"kitchen breakfast", models.CategoryKitchen, 7, 1.0},
		{"kitchen prep", models.CategoryKitchen, 16, 0.4},
		{"kitchen late", models.CategoryKitchen, 21, 0.2},
		{"other day", models.CategoryOther, 10, 0.8},
		{"other night", models.CategoryOther, 20, 0.3},
		{"unknown category", models.Category("laundry"), 10, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsageFactor(tt.category, tt.hour))
		})
	}
}

func TestGenerateLoadProfile_LightingScenario(t *testing.T) {
	profile, source := GenerateLoadProfile(ledLighting(), nil)

	require.Len(t, profile, 24)
	assert.Equal(t, models.WeatherSynthetic, source)

	for h, point := range profile {
		assert.Equal(t, h, point.Hour)

		var want float64
		switch {
		case h < 6 || h >= 18:
			want = 0.18
		case h >= 9 && h <= 15:
			want = 0.036
		default:
			want = 0.126
		}
		assert.InDelta(t, want, point.DemandKW, 1e-12, "hour %d", h)
		assert.InDelta(t, want, point.EquipmentBreakdown["LED tube"], 1e-12, "hour %d", h)
	}
}

func TestGenerateLoadProfile_CoolingCorrection(t *testing.T) {
	fan := []models.Equipment{
		{ID: "c1", Name: "Split AC", Category: models.CategoryCooling, PowerRatingW: 1000, HoursPerDay: 8, Efficiency: 1, Priority: models.PriorityOptional, Quantity: 1},
	}
	light := ledLighting()

	hot, source := GenerateLoadProfile(append(fan, light...), flatWeather(30))
	mild, _ := GenerateLoadProfile(append(fan, light...), flatWeather(20))

	assert.Equal(t, models.WeatherSupplied, source)

	// 12:00: cooling draws 1.0 kW, +5% per degree above 25 °C; lighting untouched
	assert.InDelta(t, 1.25, hot[12].EquipmentBreakdown["Split AC"], 1e-12)
	assert.InDelta(t, 1.0, mild[12].EquipmentBreakdown["Split AC"], 1e-12)
	assert.InDelta(t, 1.25+0.036, hot[12].DemandKW, 1e-12)
	assert.InDelta(t, hot[12].EquipmentBreakdown["LED tube"], mild[12].EquipmentBreakdown["LED tube"], 1e-12)
}

func TestGenerateLoadProfile_Empty(t *testing.T) {
	profile, _ := GenerateLoadProfile(nil, nil)

	require.Len(t, profile, 24)
	for h, point := range profile {
		assert.Equal(t, h, point.Hour)
		assert.Zero(t, point.DemandKW)
		assert.Empty(t, point.EquipmentBreakdown)
	}
}

func TestSyntheticWeather(t *testing.T) {
	w := SyntheticWeather()

	require.NoError(t, w.Validate())
	assert.InDelta(t, 38.0, w.TemperatureC[14], 1e-9)
	assert.InDelta(t, 22.0, w.TemperatureC[2], 1e-9)
	assert.InDelta(t, 1000.0, w.IrradianceWm2[12], 1e-9)

	for h := 0; h < 24; h++ {
		if h < 6 || h > 18 {
			assert.Zero(t, w.IrradianceWm2[h], "hour %d", h)
		}
		assert.GreaterOrEqual(t, w.IrradianceWm2[h], 0.0, "hour %d", h)
	}
}
