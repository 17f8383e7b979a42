package analysis

import "hybrid-energy-platform/internal/models"

const (
	lowLoadFactor      = 0.4
	maxShavingHours    = 2
	lightingShareLimit = 0.30
	coolingShareLimit  = 0.40
)

var facilityAdvice = map[models.FacilityType]string{
	models.FacilityHealthClinic: "Install solar water heating for sterilization and hot water to offload electric heaters.",
	models.FacilitySchool:       "Schedule computer labs and other heavy loads during school hours to match solar production.",
	models.FacilityOffice:       "Enable power management on computers and printers so idle equipment sleeps outside working hours.",
}

// Recommend evaluates the advice rules in a fixed order, each contributing at most one line.
// A facility without demand gets no advice.
func Recommend(summary models.DemandSummary, breakdown models.CategoryBreakdown, facility models.FacilityType) []string {
	recommendations := []string{}
	if !(summary.PeakDemandKW > 0) {
		return recommendations
	}

	if summary.LoadFactor < lowLoadFactor {
		recommendations = append(recommendations,
			"Load factor is low: shift flexible loads such as pumping, laundry and charging away from the peak to flatten demand.")
	}
	if len(summary.PeakHours) <= maxShavingHours {
		recommendations = append(recommendations,
			"Demand peaks are short: size the battery to shave peak hours instead of oversizing the PV array.")
	}
	if breakdown.Share(models.CategoryLighting) > lightingShareLimit {
		recommendations = append(recommendations,
			"Lighting is a large share of connected load: upgrade to LED fixtures to cut consumption by up to 60%.")
	}
	if breakdown.Share(models.CategoryCooling) > coolingShareLimit {
		recommendations = append(recommendations,
			"Cooling dominates connected load: improve insulation and shading and choose high-efficiency cooling equipment.")
	}
	if advice, ok := facilityAdvice[facility]; ok {
		recommendations = append(recommendations, advice)
	}

	return recommendations
}
