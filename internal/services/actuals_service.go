package services

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
)

// uncategorizedName groups actuals that no category has claimed yet.
const uncategorizedName = "Uncategorized"

// actualsService implements the actuals reconciliation engine.
type actualsService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewActualsService creates a new ActualsServicer.
func NewActualsService(db *gorm.DB, categoryService CategoryServicer) ActualsServicer {
	return &actualsService{
		db:              db,
		categoryService: categoryService,
	}
}

// RecordActual records an approved expense event against a budget. Spend
// keeps landing after a budget locks; only archived budgets reject it.
func (s *actualsService) RecordActual(budgetID uint, input RecordActualInput) (*models.BudgetActual, error) {
	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.Status == models.BudgetStatusArchived {
		return nil, apperrors.ErrBudgetLocked
	}

	if !input.SourceType.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid source_type: "+string(input.SourceType))
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.RecordedAt.IsZero() {
		input.RecordedAt = time.Now()
	}
	if input.LineItemID != nil && input.CategoryID == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "line_item_id requires category_id")
	}

	categoryName := ""
	if input.CategoryID != nil {
		category, err := s.categoryService.GetCategoryByID(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.BudgetID != budgetID {
			return nil, apperrors.ErrCategoryNotFound
		}
		categoryName = category.Name
	}

	if input.LineItemID != nil {
		var item models.BudgetLineItem
		if err := s.db.First(&item, *input.LineItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrLineItemNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if item.CategoryID != *input.CategoryID {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "line item does not belong to the given category")
		}
	}

	actual := &models.BudgetActual{
		BudgetID:      budgetID,
		CategoryID:    input.CategoryID,
		LineItemID:    input.LineItemID,
		CategoryName:  categoryName,
		SourceType:    input.SourceType,
		Amount:        input.Amount,
		RecordedAt:    input.RecordedAt,
		SubmitterID:   input.SubmitterID,
		SubmitterName: input.SubmitterName,
		SourceDetails: input.SourceDetails,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(actual).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if input.LineItemID != nil {
			err := tx.Model(&models.BudgetLineItem{}).
				Where("id = ?", *input.LineItemID).
				Update("actual_total", gorm.Expr("actual_total + ?", input.Amount)).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if input.CategoryID != nil {
			if err := s.categoryService.RecomputeCategory(tx, *input.CategoryID); err != nil {
				return err
			}
		}
		return touchBudget(tx, budgetID)
	})
	if err != nil {
		return nil, err
	}
	return actual, nil
}

// ReassignActual moves an actual to a different category (or back to
// uncategorized). Re-categorization is the only mutation an actual allows.
func (s *actualsService) ReassignActual(actualID uint, categoryID *uint) (*models.BudgetActual, error) {
	var actual models.BudgetActual
	if err := s.db.First(&actual, actualID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrActualNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget, err := loadBudget(s.db, actual.BudgetID)
	if err != nil {
		return nil, err
	}
	if budget.Status == models.BudgetStatusArchived {
		return nil, apperrors.ErrBudgetLocked
	}

	categoryName := ""
	if categoryID != nil {
		category, err := s.categoryService.GetCategoryByID(*categoryID)
		if err != nil {
			return nil, err
		}
		if category.BudgetID != actual.BudgetID {
			return nil, apperrors.ErrCategoryNotFound
		}
		categoryName = category.Name
	}

	oldCategoryID := actual.CategoryID
	oldLineItemID := actual.LineItemID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The line item mapping does not survive a category move.
		if oldLineItemID != nil {
			err := tx.Model(&models.BudgetLineItem{}).
				Where("id = ?", *oldLineItemID).
				Update("actual_total", gorm.Expr("actual_total - ?", actual.Amount)).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		err := tx.Model(&actual).Updates(map[string]interface{}{
			"category_id":   categoryID,
			"category_name": categoryName,
			"line_item_id":  nil,
		}).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if oldCategoryID != nil {
			if err := s.categoryService.RecomputeCategory(tx, *oldCategoryID); err != nil {
				return err
			}
		}
		if categoryID != nil {
			if err := s.categoryService.RecomputeCategory(tx, *categoryID); err != nil {
				return err
			}
		}
		return touchBudget(tx, actual.BudgetID)
	})
	if err != nil {
		return nil, err
	}

	actual.CategoryID = categoryID
	actual.CategoryName = categoryName
	actual.LineItemID = nil
	return &actual, nil
}

// GetBudgetActuals builds the reconciled actual-spend view: per-category
// totals, (submitter, source type) drill-down groups, the unmapped-receipt
// warning, and a grand total. Also cross-checks that stored category
// subtotals still agree with the recorded actuals.
func (s *actualsService) GetBudgetActuals(budgetID uint, includeSourceDetails bool) (*ActualsView, error) {
	if _, err := loadBudget(s.db, budgetID); err != nil {
		return nil, err
	}

	var actuals []models.BudgetActual
	err := s.db.Where("budget_id = ?", budgetID).Order("recorded_at, id").Find(&actuals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.BudgetCategory
	if err := s.db.Where("budget_id = ?", budgetID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	view := &ActualsView{
		Categories:           []ActualCategoryGroup{},
		TotalAmount:          decimal.Zero,
		UnmappedReceiptTotal: decimal.Zero,
	}

	type subKey struct {
		submitterID uint
		sourceType  models.SourceType
	}
	type catGroup struct {
		group ActualCategoryGroup
		subs  map[subKey]*ActualSubGroup
	}

	groups := make(map[string]*catGroup)
	mappedTotal := decimal.Zero

	for _, actual := range actuals {
		view.TotalAmount = view.TotalAmount.Add(actual.Amount)

		// The denormalized name keeps actuals grouped under a category
		// even after that category is deleted.
		name := actual.CategoryName
		if name == "" {
			name = uncategorizedName
		}
		if actual.CategoryID != nil {
			mappedTotal = mappedTotal.Add(actual.Amount)
		}
		if actual.CategoryID == nil && actual.SourceType == models.SourceTypeReceipt {
			view.UnmappedReceiptTotal = view.UnmappedReceiptTotal.Add(actual.Amount)
			view.UnmappedReceiptCount++
		}

		cg, ok := groups[name]
		if !ok {
			cg = &catGroup{
				group: ActualCategoryGroup{
					CategoryID:   actual.CategoryID,
					CategoryName: name,
					Total:        decimal.Zero,
				},
				subs: make(map[subKey]*ActualSubGroup),
			}
			groups[name] = cg
		}
		cg.group.Total = cg.group.Total.Add(actual.Amount)

		key := subKey{submitterID: actual.SubmitterID, sourceType: actual.SourceType}
		sub, ok := cg.subs[key]
		if !ok {
			sub = &ActualSubGroup{
				SubmitterID:   actual.SubmitterID,
				SubmitterName: actual.SubmitterName,
				SourceType:    actual.SourceType,
				Total:         decimal.Zero,
			}
			cg.subs[key] = sub
		}
		sub.Total = sub.Total.Add(actual.Amount)
		sub.Count++

		entry := ActualEntry{
			ID:         actual.ID,
			Amount:     actual.Amount,
			RecordedAt: actual.RecordedAt,
			Summary:    actual.SourceDetails.Summary(actual.SourceType),
		}
		if includeSourceDetails {
			details := actual.SourceDetails
			entry.Details = &details
		}
		sub.Entries = append(sub.Entries, entry)
	}

	for _, cg := range groups {
		for _, sub := range cg.subs {
			cg.group.SubGroups = append(cg.group.SubGroups, *sub)
		}
		sort.Slice(cg.group.SubGroups, func(i, j int) bool {
			a, b := cg.group.SubGroups[i], cg.group.SubGroups[j]
			if a.SubmitterName != b.SubmitterName {
				return a.SubmitterName < b.SubmitterName
			}
			return a.SourceType < b.SourceType
		})
		view.Categories = append(view.Categories, cg.group)
	}
	sort.Slice(view.Categories, func(i, j int) bool {
		a, b := view.Categories[i], view.Categories[j]
		if (a.CategoryName == uncategorizedName) != (b.CategoryName == uncategorizedName) {
			return b.CategoryName == uncategorizedName
		}
		return a.CategoryName < b.CategoryName
	})

	// The reconciled total must match the stored category subtotals; a
	// disagreement means derived state drifted and is a hard failure.
	storedTotal := decimal.Zero
	for _, cat := range categories {
		storedTotal = storedTotal.Add(cat.ActualSubtotal)
	}
	if !storedTotal.Equal(mappedTotal) {
		return nil, apperrors.WithMessage(apperrors.ErrIntegrityViolation,
			"stored category actual subtotals disagree with recorded actuals")
	}

	return view, nil
}
