package models

import "time"

// ProductionDay is one day of a budget's production calendar, supplied by
// the project-calendar side of the system. DayNumber is 1-based and follows
// date order across all phases.
type ProductionDay struct {
	Base
	BudgetID  uint            `gorm:"not null;index" json:"budget_id"`
	DayNumber int             `gorm:"not null" json:"day_number"`
	Date      time.Time       `gorm:"not null" json:"date"`
	Phase     ProductionPhase `gorm:"not null" json:"phase"`
}
