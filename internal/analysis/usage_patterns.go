package analysis

import "hybrid-energy-platform/internal/models"

// defaultUsageFactor applies to categories without a dedicated pattern
const defaultUsageFactor = 0.5

// UsageFactor returns the fraction of rated load a category draws at the given hour.
// The table is fixed data: a pure function of its arguments with no process-wide state.
func UsageFactor(category models.Category, hour int) float64 {
	switch category {
	case models.CategoryLighting:
		switch {
		case hour < 6 || hour >= 18:
			return 1.0
		case hour >= 9 && hour <= 15:
			return 0.2
		default:
			// 06-08 and 16-17: dawn and dusk
			return 0.7
		}

	case models.CategoryMedical:
		switch {
		case hour >= 6 && hour <= 18:
			return 1.0
		case hour >= 19 && hour <= 22:
			return 0.6
		default:
			return 0.3
		}

	case models.CategoryCooling:
		switch {
		case hour >= 10 && hour <= 16:
			return 1.0
		case (hour >= 8 && hour < 10) || (hour > 16 && hour <= 20):
			return 0.7
		default:
			return 0.3
		}

	case models.CategoryComputing:
		switch {
		case hour >= 8 && hour <= 17:
			return 1.0
		case hour >= 18 && hour <= 22:
			return 0.5
		default:
			return 0.1
		}

	case models.CategoryKitchen:
		switch hour {
		case 6, 7, 8, 12, 13, 18, 19:
			return 1.0
		case 9, 10, 11, 14, 15, 16, 17, 20:
			return 0.4
		default:
			return 0.2
		}

	case models.CategoryOther:
		if hour >= 8 && hour <= 17 {
			return 0.8
		}
		return 0.3
	}

	return defaultUsageFactor
}
