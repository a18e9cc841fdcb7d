package services

import (
	"sort"

	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
)

// calendarService stores the production day list supplied by the project
// calendar. Day numbers are assigned in date order across all phases.
type calendarService struct {
	db *gorm.DB
}

// NewCalendarService creates a new CalendarServicer.
func NewCalendarService(db *gorm.DB) CalendarServicer {
	return &calendarService{db: db}
}

// SetProductionDays replaces the budget's calendar. Existing daily
// allocations are left alone; the next sync diffs them away.
func (s *calendarService) SetProductionDays(budgetID uint, days []ProductionDayInput) ([]models.ProductionDay, error) {
	if _, err := editableBudget(s.db, budgetID); err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one production day is required")
	}
	for _, day := range days {
		if !day.Phase.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid phase: "+string(day.Phase))
		}
		if day.Date.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "production day date is required")
		}
	}

	sorted := make([]ProductionDayInput, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	created := make([]models.ProductionDay, 0, len(sorted))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budgetID).Delete(&models.ProductionDay{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i, input := range sorted {
			day := models.ProductionDay{
				BudgetID:  budgetID,
				DayNumber: i + 1,
				Date:      input.Date,
				Phase:     input.Phase,
			}
			if err := tx.Create(&day).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			created = append(created, day)
		}
		return touchBudget(tx, budgetID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetProductionDays returns the budget's calendar in day order.
func (s *calendarService) GetProductionDays(budgetID uint) ([]models.ProductionDay, error) {
	if _, err := loadBudget(s.db, budgetID); err != nil {
		return nil, err
	}

	var days []models.ProductionDay
	err := s.db.Where("budget_id = ?", budgetID).Order("day_number, id").Find(&days).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return days, nil
}
