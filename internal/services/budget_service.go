package services

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/pagination"
)

// budgetService handles budget lifecycle business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget, optionally seeded from a built-in
// category template.
func (s *budgetService) CreateBudget(input CreateBudgetInput) (*models.Budget, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if input.ContingencyPercent.IsNegative() || input.ContingencyPercent.GreaterThan(oneHundred) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contingency_percent must be between 0 and 100")
	}
	if input.BudgetType == "" {
		input.BudgetType = models.BudgetTypeEstimate
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	var template []categoryTemplate
	if input.TemplateKind != "" {
		var ok bool
		template, ok = budgetTemplates[input.TemplateKind]
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown template kind: "+input.TemplateKind)
		}
	}

	budget := &models.Budget{
		Name:               input.Name,
		Currency:           input.Currency,
		ContingencyPercent: input.ContingencyPercent,
		Status:             models.BudgetStatusDraft,
		BudgetType:         input.BudgetType,
		Notes:              input.Notes,
		ContentUpdatedAt:   time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i, ct := range template {
			category := &models.BudgetCategory{
				BudgetID:     budget.ID,
				Name:         ct.Name,
				Code:         ct.Code,
				CategoryType: ct.CategoryType,
				IsTaxable:    ct.IsTaxable,
				TaxRate:      ct.TaxRate,
				IsFringe:     ct.IsFringe,
				SortOrder:    i,
			}
			if err := tx.Create(category).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBudgetByID(budget.ID)
}

// GetBudgetByID returns a budget with its categories and line items.
func (s *budgetService) GetBudgetByID(budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order, id")
	}).Preload("Categories.LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order, id")
	}).First(&budget, budgetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgets returns a paginated list of budgets with optional filters.
func (s *budgetService) GetBudgets(page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.BudgetType != nil {
		base = base.Where("budget_type = ?", *filter.BudgetType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("id").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateBudget updates budget fields. Rejected when locked or archived;
// status transitions go through TransitionStatus instead.
func (s *budgetService) UpdateBudget(budgetID uint, input UpdateBudgetInput) (*models.Budget, error) {
	budget, err := editableBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
		}
		updates["name"] = *input.Name
	}
	if input.Currency != nil {
		updates["currency"] = *input.Currency
	}
	if input.ContingencyPercent != nil {
		if input.ContingencyPercent.IsNegative() || input.ContingencyPercent.GreaterThan(oneHundred) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contingency_percent must be between 0 and 100")
		}
		updates["contingency_percent"] = *input.ContingencyPercent
	}
	if input.BudgetType != nil {
		updates["budget_type"] = *input.BudgetType
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		updates["content_updated_at"] = time.Now()
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// TransitionStatus moves a budget forward through its lifecycle. Backward
// moves, including unlock, are rejected.
func (s *budgetService) TransitionStatus(budgetID uint, next models.BudgetStatus) (*models.Budget, error) {
	if !next.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget status: "+string(next))
	}

	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.Status.CanTransitionTo(next) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	if err := s.db.Model(budget).Update("status", next).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// LockBudget locks a budget. Irreversible through the standard API.
func (s *budgetService) LockBudget(budgetID uint) (*models.Budget, error) {
	return s.TransitionStatus(budgetID, models.BudgetStatusLocked)
}

// DeleteBudget soft-deletes a budget along with its categories, line items,
// actuals, calendar, cached top sheet, and daily allocations. The cascade
// runs in one transaction so no daily allocation is left dangling.
func (s *budgetService) DeleteBudget(budgetID uint) error {
	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		categoryIDs := tx.Model(&models.BudgetCategory{}).Select("id").Where("budget_id = ?", budgetID)

		for _, step := range []error{
			tx.Where("budget_id = ?", budgetID).Delete(&models.DailyAllocation{}).Error,
			tx.Where("budget_id = ?", budgetID).Delete(&models.ProductionDay{}).Error,
			tx.Where("budget_id = ?", budgetID).Delete(&models.BudgetActual{}).Error,
			tx.Where("budget_id = ?", budgetID).Delete(&models.TopSheetSnapshot{}).Error,
			tx.Where("category_id IN (?)", categoryIDs).Delete(&models.BudgetLineItem{}).Error,
			tx.Where("budget_id = ?", budgetID).Delete(&models.BudgetCategory{}).Error,
			tx.Delete(budget).Error,
		} {
			if step != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, step)
			}
		}
		return nil
	})
}

// CloneBudget produces a new draft budget with deep copies of all categories
// and line items, zeroed actuals, and no daily allocations.
func (s *budgetService) CloneBudget(budgetID uint, name string) (*models.Budget, error) {
	source, err := s.GetBudgetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = source.Name + " (copy)"
	}

	clone := &models.Budget{
		Name:               name,
		Currency:           source.Currency,
		ContingencyPercent: source.ContingencyPercent,
		Status:             models.BudgetStatusDraft,
		BudgetType:         source.BudgetType,
		Notes:              source.Notes,
		ContentUpdatedAt:   time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clone).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, cat := range source.Categories {
			newCat := models.BudgetCategory{
				BudgetID:          clone.ID,
				Name:              cat.Name,
				Code:              cat.Code,
				CategoryType:      cat.CategoryType,
				Color:             cat.Color,
				IsTaxable:         cat.IsTaxable,
				TaxRate:           cat.TaxRate,
				IsFringe:          cat.IsFringe,
				SortOrder:         cat.SortOrder,
				EstimatedSubtotal: cat.EstimatedSubtotal,
				ActualSubtotal:    decimal.Zero,
			}
			if err := tx.Create(&newCat).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			for _, item := range cat.LineItems {
				newItem := models.BudgetLineItem{
					CategoryID:     newCat.ID,
					Description:    item.Description,
					RateType:       item.RateType,
					RateAmount:     item.RateAmount,
					Quantity:       item.Quantity,
					Units:          item.Units,
					EstimatedTotal: item.EstimatedTotal,
					ActualTotal:    decimal.Zero,
					IsTaxLineItem:  item.IsTaxLineItem,
					IsLocked:       item.IsLocked,
					SortOrder:      item.SortOrder,
					Phase:          item.Phase,
					IsDivisible:    item.IsDivisible,
					DayCountHint:   item.DayCountHint,
				}
				if err := tx.Create(&newItem).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBudgetByID(clone.ID)
}

// DiffBudgets compares two budgets by category, matching on code with a
// name fallback. Deltas are computed as B minus A.
func (s *budgetService) DiffBudgets(budgetA, budgetB uint) (*BudgetDiff, error) {
	a, err := s.GetBudgetByID(budgetA)
	if err != nil {
		return nil, err
	}
	b, err := s.GetBudgetByID(budgetB)
	if err != nil {
		return nil, err
	}
	return diffBudgets(a, b), nil
}

// diffBudgets is the pure transform behind DiffBudgets.
func diffBudgets(a, b *models.Budget) *BudgetDiff {
	diff := &BudgetDiff{
		Categories: []CategoryDelta{},
		OnlyInA:    []CategoryRef{},
		OnlyInB:    []CategoryRef{},
	}

	matchKey := func(cat models.BudgetCategory) string {
		if cat.Code != "" {
			return "code:" + cat.Code
		}
		return "name:" + cat.Name
	}

	aByKey := make(map[string]models.BudgetCategory, len(a.Categories))
	for _, cat := range a.Categories {
		aByKey[matchKey(cat)] = cat
	}

	matched := make(map[string]bool)
	for _, catB := range b.Categories {
		key := matchKey(catB)
		catA, ok := aByKey[key]
		if !ok {
			diff.OnlyInB = append(diff.OnlyInB, CategoryRef{
				Code:              catB.Code,
				Name:              catB.Name,
				EstimatedSubtotal: catB.EstimatedSubtotal,
				ActualSubtotal:    catB.ActualSubtotal,
			})
			continue
		}
		matched[key] = true
		diff.Categories = append(diff.Categories, CategoryDelta{
			Code:           catB.Code,
			Name:           catB.Name,
			EstimatedDelta: catB.EstimatedSubtotal.Sub(catA.EstimatedSubtotal),
			ActualDelta:    catB.ActualSubtotal.Sub(catA.ActualSubtotal),
		})
	}

	for _, catA := range a.Categories {
		if matched[matchKey(catA)] {
			continue
		}
		diff.OnlyInA = append(diff.OnlyInA, CategoryRef{
			Code:              catA.Code,
			Name:              catA.Name,
			EstimatedSubtotal: catA.EstimatedSubtotal,
			ActualSubtotal:    catA.ActualSubtotal,
		})
	}

	sortRefs := func(refs []CategoryRef) {
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].Code != refs[j].Code {
				return refs[i].Code < refs[j].Code
			}
			return refs[i].Name < refs[j].Name
		})
	}
	sort.Slice(diff.Categories, func(i, j int) bool {
		if diff.Categories[i].Code != diff.Categories[j].Code {
			return diff.Categories[i].Code < diff.Categories[j].Code
		}
		return diff.Categories[i].Name < diff.Categories[j].Name
	})
	sortRefs(diff.OnlyInA)
	sortRefs(diff.OnlyInB)

	return diff
}

// GetBudgetStats derives budget-level statistics from current category and
// actual state. Read-only; never persists what it computes.
func (s *budgetService) GetBudgetStats(budgetID uint) (*BudgetStats, error) {
	if _, err := loadBudget(s.db, budgetID); err != nil {
		return nil, err
	}

	var categories []models.BudgetCategory
	if err := s.db.Where("budget_id = ?", budgetID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var actuals []models.BudgetActual
	if err := s.db.Where("budget_id = ?", budgetID).Find(&actuals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats := ComputeBudgetStats(categories, actuals)
	return &stats, nil
}
