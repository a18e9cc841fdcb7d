package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
)

// taxLineDescription names the system-generated tax line item.
const taxLineDescription = "Sales Tax"

// categoryService handles budget category business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func validateCategoryInput(name string, categoryType models.CategoryType, taxRate decimal.Decimal) error {
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !categoryType.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_type: "+string(categoryType))
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "tax_rate must be between 0 and 1")
	}
	return nil
}

// CreateCategory creates a category under a budget.
func (s *categoryService) CreateCategory(budgetID uint, input CreateCategoryInput) (*models.BudgetCategory, error) {
	if _, err := editableBudget(s.db, budgetID); err != nil {
		return nil, err
	}
	if input.CategoryType == "" {
		input.CategoryType = models.CategoryTypeOther
	}
	if err := validateCategoryInput(input.Name, input.CategoryType, input.TaxRate); err != nil {
		return nil, err
	}

	category := &models.BudgetCategory{
		BudgetID:     budgetID,
		Name:         input.Name,
		Code:         input.Code,
		CategoryType: input.CategoryType,
		Color:        input.Color,
		IsTaxable:    input.IsTaxable,
		TaxRate:      input.TaxRate,
		IsFringe:     input.IsFringe,
		SortOrder:    input.SortOrder,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return touchBudget(tx, budgetID)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// GetBudgetCategories returns all categories of a budget with line items,
// in stable sort order.
func (s *categoryService) GetBudgetCategories(budgetID uint) ([]models.BudgetCategory, error) {
	if _, err := loadBudget(s.db, budgetID); err != nil {
		return nil, err
	}

	var categories []models.BudgetCategory
	err := s.db.Where("budget_id = ?", budgetID).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order, id")
		}).
		Order("sort_order, id").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID returns a category with its line items.
func (s *categoryService) GetCategoryByID(categoryID uint) (*models.BudgetCategory, error) {
	var category models.BudgetCategory
	err := s.db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order, id")
	}).First(&category, categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates category fields and synchronously recomputes the
// derived subtotals (and the tax line item when taxability changed).
func (s *categoryService) UpdateCategory(categoryID uint, input UpdateCategoryInput) (*models.BudgetCategory, error) {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}
	if _, err := editableBudget(s.db, category.BudgetID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		updates["name"] = *input.Name
	}
	if input.Code != nil {
		updates["code"] = *input.Code
	}
	if input.CategoryType != nil {
		if !input.CategoryType.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_type: "+string(*input.CategoryType))
		}
		updates["category_type"] = *input.CategoryType
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.IsTaxable != nil {
		updates["is_taxable"] = *input.IsTaxable
	}
	if input.TaxRate != nil {
		if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tax_rate must be between 0 and 1")
		}
		updates["tax_rate"] = *input.TaxRate
	}
	if input.IsFringe != nil {
		updates["is_fringe"] = *input.IsFringe
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(category).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := s.RecomputeCategory(tx, categoryID); err != nil {
			return err
		}
		return touchBudget(tx, category.BudgetID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCategoryByID(categoryID)
}

// DeleteCategory soft-deletes a category, its line items, and any daily
// allocations referencing those items. Recorded actuals are never deleted:
// they are unlinked (category and line item references cleared) and keep
// their denormalized category name, so the reconciliation view still shows
// them under the removed category's name.
func (s *categoryService) DeleteCategory(categoryID uint) error {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}
	if _, err := editableBudget(s.db, category.BudgetID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&models.BudgetLineItem{}).Select("id").Where("category_id = ?", categoryID)
		if err := tx.Where("line_item_id IN (?)", itemIDs).Delete(&models.DailyAllocation{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.BudgetLineItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		err := tx.Model(&models.BudgetActual{}).
			Where("category_id = ?", categoryID).
			Updates(map[string]interface{}{"category_id": nil, "line_item_id": nil}).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return touchBudget(tx, category.BudgetID)
	})
}

// RecomputeCategory rebuilds a category's derived state from its children:
// the estimated subtotal from non-tax line items, the system tax line item
// when the category is taxable, and the actual subtotal from recorded
// actuals mapped to the category. Runs inside the caller's transaction.
func (s *categoryService) RecomputeCategory(tx *gorm.DB, categoryID uint) error {
	var category models.BudgetCategory
	if err := tx.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.BudgetLineItem
	if err := tx.Where("category_id = ? AND is_tax_line_item = ?", categoryID, false).Find(&items).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	base := decimal.Zero
	for _, item := range items {
		base = base.Add(item.EstimatedTotal)
	}

	estimated := base
	var taxItem models.BudgetLineItem
	taxErr := tx.Where("category_id = ? AND is_tax_line_item = ?", categoryID, true).First(&taxItem).Error

	if category.IsTaxable && category.TaxRate.IsPositive() {
		taxAmount := base.Mul(category.TaxRate).Round(2)
		estimated = base.Add(taxAmount)

		if errors.Is(taxErr, gorm.ErrRecordNotFound) {
			taxItem = models.BudgetLineItem{
				CategoryID:     categoryID,
				Description:    taxLineDescription,
				RateType:       models.RateTypeFlat,
				RateAmount:     taxAmount,
				Quantity:       decimal.NewFromInt(1),
				EstimatedTotal: taxAmount,
				IsTaxLineItem:  true,
				IsLocked:       true,
				SortOrder:      models.TaxLineSortOrder,
			}
			if err := tx.Create(&taxItem).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else if taxErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, taxErr)
		} else if !taxItem.EstimatedTotal.Equal(taxAmount) {
			err := tx.Model(&taxItem).Updates(map[string]interface{}{
				"rate_amount":     taxAmount,
				"estimated_total": taxAmount,
			}).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
	} else if taxErr == nil {
		// Category is no longer taxable; drop the stale tax item.
		if err := tx.Delete(&taxItem).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else if !errors.Is(taxErr, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, taxErr)
	}

	var actuals []models.BudgetActual
	if err := tx.Where("category_id = ?", categoryID).Find(&actuals).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	actualSubtotal := decimal.Zero
	for _, actual := range actuals {
		actualSubtotal = actualSubtotal.Add(actual.Amount)
	}

	err := tx.Model(&models.BudgetCategory{}).Where("id = ?", categoryID).Updates(map[string]interface{}{
		"estimated_subtotal": estimated,
		"actual_subtotal":    actualSubtotal,
	}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// verifyCategoryIntegrity checks that a category's stored estimated subtotal
// equals the sum of its line items (tax item included). A mismatch means
// derived state was corrupted; it is surfaced, never silently repaired.
func verifyCategoryIntegrity(category *models.BudgetCategory) error {
	sum := decimal.Zero
	for _, item := range category.LineItems {
		sum = sum.Add(item.EstimatedTotal)
	}
	if !sum.Equal(category.EstimatedSubtotal) {
		return apperrors.WithMessage(apperrors.ErrIntegrityViolation,
			"estimated subtotal for category "+category.Name+" disagrees with its line item sum")
	}
	return nil
}
