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

// topSheetService implements the top sheet compute engine.
type topSheetService struct {
	db *gorm.DB
}

// NewTopSheetService creates a new TopSheetServicer.
func NewTopSheetService(db *gorm.DB) TopSheetServicer {
	return &topSheetService{db: db}
}

// bucketOrder fixes the phase bucket ordering on every top sheet.
var bucketOrder = []models.CategoryType{
	models.CategoryTypeAboveTheLine,
	models.CategoryTypeProduction,
	models.CategoryTypePost,
	models.CategoryTypeOther,
}

// computeTopSheet is the pure rollup over a budget's categories.
//
// Fringe-bearing categories are summed into fringes_total and excluded from
// the phase buckets. Contingency is always computed against the estimated
// subtotal, never actuals, so it stays meaningful as a planning buffer.
func computeTopSheet(budget *models.Budget, categories []models.BudgetCategory) *models.TopSheet {
	lines := make(map[models.CategoryType][]models.TopSheetLine)
	fringes := decimal.Zero

	for _, cat := range categories {
		if cat.IsFringe {
			fringes = fringes.Add(cat.EstimatedSubtotal)
			continue
		}
		categoryType := cat.CategoryType
		if !categoryType.IsValid() {
			categoryType = models.CategoryTypeOther
		}
		lines[categoryType] = append(lines[categoryType], models.TopSheetLine{
			CategoryID: cat.ID,
			Code:       cat.Code,
			Name:       cat.Name,
			Estimated:  cat.EstimatedSubtotal,
			Actual:     cat.ActualSubtotal,
			Variance:   cat.ActualSubtotal.Sub(cat.EstimatedSubtotal),
		})
	}

	subtotal := decimal.Zero
	buckets := make([]models.TopSheetBucket, 0, len(bucketOrder))
	for _, categoryType := range bucketOrder {
		bucketLines := lines[categoryType]

		// Sort by code when present, name otherwise; duplicate codes fall
		// back to alphabetical name order.
		sort.SliceStable(bucketLines, func(i, j int) bool {
			ki, kj := bucketLines[i].Code, bucketLines[j].Code
			if ki == "" {
				ki = bucketLines[i].Name
			}
			if kj == "" {
				kj = bucketLines[j].Name
			}
			if ki != kj {
				return ki < kj
			}
			return bucketLines[i].Name < bucketLines[j].Name
		})

		bucket := models.TopSheetBucket{
			CategoryType:   categoryType,
			EstimatedTotal: decimal.Zero,
			ActualTotal:    decimal.Zero,
			VarianceTotal:  decimal.Zero,
			Lines:          bucketLines,
		}
		for _, line := range bucketLines {
			bucket.EstimatedTotal = bucket.EstimatedTotal.Add(line.Estimated)
			bucket.ActualTotal = bucket.ActualTotal.Add(line.Actual)
			bucket.VarianceTotal = bucket.VarianceTotal.Add(line.Variance)
		}
		if bucket.Lines == nil {
			bucket.Lines = []models.TopSheetLine{}
		}
		subtotal = subtotal.Add(bucket.EstimatedTotal)
		buckets = append(buckets, bucket)
	}

	contingency := subtotal.Mul(budget.ContingencyPercent).Div(oneHundred).Round(2)

	return &models.TopSheet{
		BudgetID:          budget.ID,
		Buckets:           buckets,
		Subtotal:          subtotal,
		ContingencyAmount: contingency,
		FringesTotal:      fringes,
		GrandTotal:        subtotal.Add(contingency).Add(fringes),
	}
}

// ComputeTopSheet recomputes the top sheet from current category state,
// refreshes the cached snapshot, and returns the fresh view. Each category
// is integrity-checked against its line items before it is trusted.
func (s *topSheetService) ComputeTopSheet(budgetID uint) (*models.TopSheet, error) {
	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	var categories []models.BudgetCategory
	err = s.db.Where("budget_id = ?", budgetID).Preload("LineItems").Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range categories {
		if err := verifyCategoryIntegrity(&categories[i]); err != nil {
			return nil, err
		}
	}

	sheet := computeTopSheet(budget, categories)
	now := time.Now()
	sheet.LastComputed = now
	sheet.IsStale = false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var snapshot models.TopSheetSnapshot
		findErr := tx.Where("budget_id = ?", budgetID).First(&snapshot).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			snapshot = models.TopSheetSnapshot{
				BudgetID:   budgetID,
				Payload:    *sheet,
				ComputedAt: now,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		case findErr != nil:
			return apperrors.Wrap(apperrors.ErrInternalServer, findErr)
		default:
			snapshot.Payload = *sheet
			snapshot.ComputedAt = now
			if err := tx.Save(&snapshot).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sheet, nil
}

// GetTopSheet returns the cached top sheet with a staleness flag. The first
// read of a budget computes once; after that, recompute is explicit.
func (s *topSheetService) GetTopSheet(budgetID uint) (*models.TopSheet, error) {
	budget, err := loadBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	var snapshot models.TopSheetSnapshot
	findErr := s.db.Where("budget_id = ?", budgetID).First(&snapshot).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		return s.ComputeTopSheet(budgetID)
	}
	if findErr != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, findErr)
	}

	sheet := snapshot.Payload
	sheet.LastComputed = snapshot.ComputedAt
	sheet.IsStale = budget.ContentUpdatedAt.After(snapshot.ComputedAt)
	return &sheet, nil
}
