package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"topsheet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", s, err)
	}
	return d
}

// CreateTestBudget creates a draft estimate budget with a unique name.
func CreateTestBudget(t *testing.T, db *gorm.DB) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithContingency(t, db, decimal.Zero)
}

// CreateTestBudgetWithContingency creates a draft budget with the given
// contingency percent.
func CreateTestBudgetWithContingency(t *testing.T, db *gorm.DB, contingencyPercent decimal.Decimal) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Name:               fmt.Sprintf("Test Budget %d", nextID()),
		Currency:           "USD",
		ContingencyPercent: contingencyPercent,
		Status:             models.BudgetStatusDraft,
		BudgetType:         models.BudgetTypeEstimate,
		ContentUpdatedAt:   time.Now(),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCategory creates a non-taxable category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, budgetID uint, categoryType models.CategoryType) *models.BudgetCategory {
	t.Helper()

	n := nextID()
	category := &models.BudgetCategory{
		BudgetID:     budgetID,
		Name:         fmt.Sprintf("Test Category %d", n),
		Code:         fmt.Sprintf("%d", 1000+n),
		CategoryType: categoryType,
		TaxRate:      decimal.Zero,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTaxableCategory creates a taxable category with the given rate.
func CreateTestTaxableCategory(t *testing.T, db *gorm.DB, budgetID uint, taxRate decimal.Decimal) *models.BudgetCategory {
	t.Helper()

	n := nextID()
	category := &models.BudgetCategory{
		BudgetID:     budgetID,
		Name:         fmt.Sprintf("Test Taxable Category %d", n),
		Code:         fmt.Sprintf("%d", 1000+n),
		CategoryType: models.CategoryTypeProduction,
		IsTaxable:    true,
		TaxRate:      taxRate,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test taxable category: %v", err)
	}
	return category
}

// CreateTestLineItem creates a line item with the given rate type, rate, and
// quantity. The estimated total is rate times quantity, the same derivation
// the line item service performs.
func CreateTestLineItem(t *testing.T, db *gorm.DB, categoryID uint, rateType models.RateType, rate, quantity decimal.Decimal) *models.BudgetLineItem {
	t.Helper()

	item := &models.BudgetLineItem{
		CategoryID:     categoryID,
		Description:    fmt.Sprintf("Test Line Item %d", nextID()),
		RateType:       rateType,
		RateAmount:     rate,
		Quantity:       quantity,
		EstimatedTotal: rate.Mul(quantity).Round(2),
		ActualTotal:    decimal.Zero,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test line item: %v", err)
	}
	return item
}

// CreateTestActual records a manual-source actual against a category.
func CreateTestActual(t *testing.T, db *gorm.DB, budgetID uint, categoryID *uint, amount decimal.Decimal) *models.BudgetActual {
	t.Helper()

	n := nextID()
	actual := &models.BudgetActual{
		BudgetID:    budgetID,
		CategoryID:  categoryID,
		SourceType:  models.SourceTypeManual,
		Amount:      amount,
		RecordedAt:  time.Now(),
		SubmitterID: 1,
		SourceDetails: models.SourceDetails{
			Manual: &models.ManualDetails{Description: fmt.Sprintf("Test expense %d", n)},
		},
		SubmitterName: "Test Submitter",
	}
	if err := db.Create(actual).Error; err != nil {
		t.Fatalf("failed to create test actual: %v", err)
	}
	return actual
}

// CreateTestProductionDays creates count consecutive days in a single phase,
// numbered from 1 and starting today.
func CreateTestProductionDays(t *testing.T, db *gorm.DB, budgetID uint, phase models.ProductionPhase, count int) []models.ProductionDay {
	t.Helper()

	start := time.Now().Truncate(24 * time.Hour)
	days := make([]models.ProductionDay, count)
	for i := 0; i < count; i++ {
		days[i] = models.ProductionDay{
			BudgetID:  budgetID,
			DayNumber: i + 1,
			Date:      start.AddDate(0, 0, i),
			Phase:     phase,
		}
	}
	if err := db.Create(&days).Error; err != nil {
		t.Fatalf("failed to create test production days: %v", err)
	}
	return days
}
