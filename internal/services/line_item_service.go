package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
)

// lineItemService handles line item business logic.
type lineItemService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewLineItemService creates a new LineItemServicer.
func NewLineItemService(db *gorm.DB, categoryService CategoryServicer) LineItemServicer {
	return &lineItemService{
		db:              db,
		categoryService: categoryService,
	}
}

func validateLineItemInput(input CreateLineItemInput) error {
	if input.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "line item description is required")
	}
	if !input.RateType.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid rate_type: "+string(input.RateType))
	}
	if input.RateAmount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "rate_amount must not be negative")
	}
	if input.Quantity.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must not be negative")
	}
	if input.Phase != "" && !input.Phase.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid phase: "+string(input.Phase))
	}
	if input.DayCountHint != nil && *input.DayCountHint < 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "day_count_hint must be at least 1")
	}
	return nil
}

// CreateLineItem creates a line item and synchronously recomputes the owning
// category's subtotals and tax line item.
func (s *lineItemService) CreateLineItem(categoryID uint, input CreateLineItemInput) (*models.BudgetLineItem, error) {
	category, err := s.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}
	if _, err := editableBudget(s.db, category.BudgetID); err != nil {
		return nil, err
	}
	if input.RateType == "" {
		input.RateType = models.RateTypeFlat
	}
	if err := validateLineItemInput(input); err != nil {
		return nil, err
	}

	item := &models.BudgetLineItem{
		CategoryID:     categoryID,
		Description:    input.Description,
		RateType:       input.RateType,
		RateAmount:     input.RateAmount,
		Quantity:       input.Quantity,
		Units:          input.Units,
		EstimatedTotal: input.RateAmount.Mul(input.Quantity).Round(2),
		Phase:          input.Phase,
		SortOrder:      input.SortOrder,
		IsDivisible:    input.IsDivisible,
		DayCountHint:   input.DayCountHint,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.categoryService.RecomputeCategory(tx, categoryID); err != nil {
			return err
		}
		return touchBudget(tx, category.BudgetID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetCategoryLineItems returns a category's line items, tax item last.
func (s *lineItemService) GetCategoryLineItems(categoryID uint) ([]models.BudgetLineItem, error) {
	if _, err := s.categoryService.GetCategoryByID(categoryID); err != nil {
		return nil, err
	}

	var items []models.BudgetLineItem
	err := s.db.Where("category_id = ?", categoryID).Order("sort_order, id").Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// GetLineItemByID returns a line item by ID.
func (s *lineItemService) GetLineItemByID(lineItemID uint) (*models.BudgetLineItem, error) {
	var item models.BudgetLineItem
	if err := s.db.First(&item, lineItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLineItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// UpdateLineItem updates a line item. Tax line items are read-only; locked
// items only accept an unlock.
func (s *lineItemService) UpdateLineItem(lineItemID uint, input UpdateLineItemInput) (*models.BudgetLineItem, error) {
	item, err := s.GetLineItemByID(lineItemID)
	if err != nil {
		return nil, err
	}
	if item.IsTaxLineItem {
		return nil, apperrors.ErrTaxLineItemReadOnly
	}

	category, err := s.categoryService.GetCategoryByID(item.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := editableBudget(s.db, category.BudgetID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Description != nil {
		if *input.Description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "line item description is required")
		}
		updates["description"] = *input.Description
	}
	if input.RateType != nil {
		if !input.RateType.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid rate_type: "+string(*input.RateType))
		}
		updates["rate_type"] = *input.RateType
	}

	rate := item.RateAmount
	qty := item.Quantity
	if input.RateAmount != nil {
		if input.RateAmount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rate_amount must not be negative")
		}
		rate = *input.RateAmount
		updates["rate_amount"] = rate
	}
	if input.Quantity != nil {
		if input.Quantity.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must not be negative")
		}
		qty = *input.Quantity
		updates["quantity"] = qty
	}
	if input.RateAmount != nil || input.Quantity != nil {
		updates["estimated_total"] = rate.Mul(qty).Round(2)
	}
	if input.Units != nil {
		updates["units"] = *input.Units
	}
	if input.Phase != nil {
		if *input.Phase != "" && !input.Phase.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid phase: "+string(*input.Phase))
		}
		updates["phase"] = *input.Phase
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	if input.IsDivisible != nil {
		updates["is_divisible"] = *input.IsDivisible
	}
	if input.DayCountHint != nil {
		if *input.DayCountHint < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "day_count_hint must be at least 1")
		}
		updates["day_count_hint"] = *input.DayCountHint
	}
	if input.IsLocked != nil {
		updates["is_locked"] = *input.IsLocked
	}

	// A locked item rejects every change except being unlocked.
	if item.IsLocked {
		unlockOnly := len(updates) == 1 && input.IsLocked != nil && !*input.IsLocked
		if len(updates) > 0 && !unlockOnly {
			return nil, apperrors.ErrLineItemLocked
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(item).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := s.categoryService.RecomputeCategory(tx, item.CategoryID); err != nil {
			return err
		}
		return touchBudget(tx, category.BudgetID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetLineItemByID(lineItemID)
}

// DeleteLineItem soft-deletes a line item along with its daily allocations
// and recomputes the owning category.
func (s *lineItemService) DeleteLineItem(lineItemID uint) error {
	item, err := s.GetLineItemByID(lineItemID)
	if err != nil {
		return err
	}
	if item.IsTaxLineItem {
		return apperrors.ErrTaxLineItemReadOnly
	}

	category, err := s.categoryService.GetCategoryByID(item.CategoryID)
	if err != nil {
		return err
	}
	if _, err := editableBudget(s.db, category.BudgetID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("line_item_id = ?", lineItemID).Delete(&models.DailyAllocation{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(item).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.categoryService.RecomputeCategory(tx, item.CategoryID); err != nil {
			return err
		}
		return touchBudget(tx, category.BudgetID)
	})
}
