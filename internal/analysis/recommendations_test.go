package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hybrid-energy-platform/internal/models"
)

func TestRecommend(t *testing.T) {
	peaky := models.DemandSummary{PeakDemandKW: 5, LoadFactor: 0.3, PeakHours: []int{13}}
	flat := models.DemandSummary{PeakDemandKW: 5, LoadFactor: 0.9, PeakHours: []int{9, 10, 11, 12, 13}}

	tests := []struct {
		name      string
		summary   models.DemandSummary
		breakdown models.CategoryBreakdown
		facility  models.FacilityType
		expected  []string
	}{
		{
			name:      "every rule fires in order",
			summary:   peaky,
			breakdown: models.CategoryBreakdown{models.CategoryLighting: 4, models.CategoryCooling: 5, models.CategoryComputing: 1},
			facility:  models.FacilityHealthClinic,
			expected: []string{
				"Load factor is low: shift flexible loads such as pumping, laundry and charging away from the peak to flatten demand.",
				"Demand peaks are short: size the battery to shave peak hours instead of oversizing the PV array.",
				"Lighting is a large share of connected load: upgrade to LED fixtures to cut consumption by up to 60%.",
				"Cooling dominates connected load: improve insulation and shading and choose high-efficiency cooling equipment.",
				facilityAdvice[models.FacilityHealthClinic],
			},
		},
		{
			name:      "flat office load",
			summary:   flat,
			breakdown: models.CategoryBreakdown{models.CategoryComputing: 3},
			facility:  models.FacilityOffice,
			expected:  []string{facilityAdvice[models.FacilityOffice]},
		},
		{
			name:      "cooling heavy school",
			summary:   flat,
			breakdown: models.CategoryBreakdown{models.CategoryCooling: 6, models.CategoryComputing: 4},
			facility:  models.FacilitySchool,
			expected: []string{
				"Cooling dominates connected load: improve insulation and shading and choose high-efficiency cooling equipment.",
				facilityAdvice[models.FacilitySchool],
			},
		},
		{
			name:      "unknown facility gets no facility advice",
			summary:   flat,
			breakdown: models.CategoryBreakdown{models.CategoryComputing: 3},
			facility:  models.FacilityType("warehouse"),
			expected:  []string{},
		},
		{
			name:      "no demand",
			summary:   models.DemandSummary{},
			breakdown: models.CategoryBreakdown{models.CategoryLighting: 1},
			facility:  models.FacilityHealthClinic,
			expected:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(tt.summary, tt.breakdown, tt.facility)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecommend_LightingScenario(t *testing.T) {
	equipment := ledLighting()
	summary := lightingSummary()

	got := Recommend(summary, CategoryBreakdown(equipment), "")

	assert.Equal(t, []string{
		"Lighting is a large share of connected load: upgrade to LED fixtures to cut consumption by up to 60%.",
	}, got)
}
