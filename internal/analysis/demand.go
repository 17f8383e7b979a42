package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hybrid-energy-platform/internal/models"
)

const (
	daysPerYear = 365
	// Hours above this fraction of peak demand count as peak hours
	peakHourThreshold = 0.8
)

// SummarizeDemand aggregates a load profile; critical and non-critical load come from the
// rated (power × quantity) inventory split on essential priority.
func SummarizeDemand(profile []models.LoadProfilePoint, equipment []models.Equipment) models.DemandSummary {
	summary := models.DemandSummary{PeakHours: []int{}}

	for _, e := range equipment {
		if e.Priority == models.PriorityEssential {
			summary.CriticalLoadKW += e.RatedKW()
		} else {
			summary.NonCriticalLoadKW += e.RatedKW()
		}
	}

	if len(profile) == 0 {
		return summary
	}

	demand := make([]float64, len(profile))
	for i, p := range profile {
		demand[i] = p.DemandKW
	}

	summary.PeakDemandKW = floats.Max(demand)
	summary.BaseLoadKW = floats.Min(demand)
	summary.DailyConsumptionKWh = floats.Sum(demand)
	summary.AnnualConsumptionKWh = summary.DailyConsumptionKWh * daysPerYear
	summary.AverageDemandKW = stat.Mean(demand, nil)

	if summary.PeakDemandKW > 0 {
		summary.LoadFactor = summary.AverageDemandKW / summary.PeakDemandKW
	}
	if summary.AverageDemandKW > 0 {
		summary.LoadVariability = math.Sqrt(stat.PopVariance(demand, nil)) / summary.AverageDemandKW
	}

	threshold := peakHourThreshold * summary.PeakDemandKW
	for _, p := range profile {
		if p.DemandKW > threshold {
			summary.PeakHours = append(summary.PeakHours, p.Hour)
		}
	}

	return summary
}

// CategoryBreakdown sums rated load per category. It is a static potential-load view that
// ignores the hour and the usage factor, unlike the hourly equipment breakdown.
func CategoryBreakdown(equipment []models.Equipment) models.CategoryBreakdown {
	breakdown := make(models.CategoryBreakdown)
	for _, e := range equipment {
		breakdown[e.Category] += e.RatedKW()
	}
	return breakdown
}
