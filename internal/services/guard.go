package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
)

// loadBudget fetches a budget or returns ErrBudgetNotFound.
func loadBudget(db *gorm.DB, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := db.First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// editableBudget fetches a budget and rejects with ErrBudgetLocked before
// any data is touched when the budget is locked or archived.
func editableBudget(db *gorm.DB, budgetID uint) (*models.Budget, error) {
	budget, err := loadBudget(db, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsEditable() {
		return nil, apperrors.ErrBudgetLocked
	}
	return budget, nil
}

// touchBudget bumps ContentUpdatedAt so cached top sheets go stale.
func touchBudget(tx *gorm.DB, budgetID uint) error {
	err := tx.Model(&models.Budget{}).
		Where("id = ?", budgetID).
		Update("content_updated_at", time.Now()).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
