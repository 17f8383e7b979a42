package models

import (
	"fmt"
	"math"
)

// Category groups equipment by its daily usage pattern
type Category string

const (
	CategoryMedical   Category = "medical"
	CategoryLighting  Category = "lighting"
	CategoryCooling   Category = "cooling"
	CategoryComputing Category = "computing"
	CategoryKitchen   Category = "kitchen"
	CategoryOther     Category = "other"
)

// Categories lists the known equipment categories in reporting order
var Categories = []Category{
	CategoryMedical,
	CategoryLighting,
	CategoryCooling,
	CategoryComputing,
	CategoryKitchen,
	CategoryOther,
}

// Priority ranks how critical a piece of equipment is to facility operation
type Priority string

const (
	PriorityEssential Priority = "essential"
	PriorityImportant Priority = "important"
	PriorityOptional  Priority = "optional"
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityEssential, PriorityImportant, PriorityOptional:
		return true
	}
	return false
}

// Equipment is a single inventory line of a facility survey
// Immutable input value: the analysis core never writes to it
type Equipment struct {
	ID           string   `json:"id" yaml:"id" db:"equipment_id"`
	Name         string   `json:"name" yaml:"name" db:"name"`
	Category     Category `json:"category" yaml:"category" db:"category"`
	PowerRatingW float64  `json:"power_rating_w" yaml:"power_rating_w" db:"power_rating_w"`
	HoursPerDay  float64  `json:"hours_per_day" yaml:"hours_per_day" db:"hours_per_day"`
	Efficiency   float64  `json:"efficiency" yaml:"efficiency" db:"efficiency"`
	Priority     Priority `json:"priority" yaml:"priority" db:"priority"`
	Quantity     int      `json:"quantity" yaml:"quantity" db:"quantity"`
}

// RatedKW is the nameplate load of the whole line (power × quantity), ignoring usage
func (e Equipment) RatedKW() float64 {
	return e.PowerRatingW * float64(e.Quantity) / 1000
}

// Validate enforces the equipment ranges accepted at the boundary
func (e Equipment) Validate() error {
	if !(e.PowerRatingW > 0) || math.IsInf(e.PowerRatingW, 0) {
		return NewValidationError("power_rating_w", e.PowerRatingW, "must be greater than 0")
	}
	if !(e.HoursPerDay >= 0 && e.HoursPerDay <= 24) {
		return NewValidationError("hours_per_day", e.HoursPerDay, "must be between 0 and 24")
	}
	if !(e.Efficiency >= 0 && e.Efficiency <= 1) {
		return NewValidationError("efficiency", e.Efficiency, "must be between 0 and 1")
	}
	if e.Quantity < 1 {
		return NewValidationError("quantity", e.Quantity, "must be at least 1")
	}
	if !e.Priority.Valid() {
		return NewValidationError("priority", e.Priority, "must be one of essential, important, optional")
	}
	return nil
}

// ValidateEquipment validates every item, reporting the first failure with its position
func ValidateEquipment(items []Equipment) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			ve := err.(*ValidationError)
			ve.Field = fmt.Sprintf("equipment[%d].%s", i, ve.Field)
			return ve
		}
	}
	return nil
}
