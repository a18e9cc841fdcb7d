package services

import (
	"github.com/shopspring/decimal"

	"topsheet/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// Variance is the estimated-versus-actual comparison for a category or a
// whole budget. Variance is positive when spend exceeds the estimate.
type Variance struct {
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
	IsOverBudget    bool            `json:"is_over_budget"`
}

// ComputeVariance returns actual minus estimated, the percent relative to
// the estimate (zero when the estimate is zero), and an over-budget flag.
// Pure; safe for concurrent use.
func ComputeVariance(estimated, actual decimal.Decimal) Variance {
	variance := actual.Sub(estimated)
	percent := decimal.Zero
	if estimated.IsPositive() {
		percent = variance.Div(estimated).Mul(oneHundred).Round(2)
	}
	return Variance{
		Variance:        variance,
		VariancePercent: percent,
		IsOverBudget:    variance.IsPositive(),
	}
}

// BudgetStats aggregates estimated and actual totals across a budget's
// categories, plus receipt tracking and over/under counts. A category with
// zero variance counts as neither over nor under.
type BudgetStats struct {
	EstimatedTotal        decimal.Decimal `json:"estimated_total"`
	ActualTotal           decimal.Decimal `json:"actual_total"`
	ReceiptTotal          decimal.Decimal `json:"receipt_total"`
	UnmappedReceiptTotal  decimal.Decimal `json:"unmapped_receipt_total"`
	CategoriesOverBudget  int             `json:"categories_over_budget"`
	CategoriesUnderBudget int             `json:"categories_under_budget"`
}

// ComputeBudgetStats derives budget-level statistics purely from the current
// category and actual state. Idempotent; no stored stats table is consulted.
func ComputeBudgetStats(categories []models.BudgetCategory, actuals []models.BudgetActual) BudgetStats {
	stats := BudgetStats{
		EstimatedTotal:       decimal.Zero,
		ActualTotal:          decimal.Zero,
		ReceiptTotal:         decimal.Zero,
		UnmappedReceiptTotal: decimal.Zero,
	}

	for _, cat := range categories {
		stats.EstimatedTotal = stats.EstimatedTotal.Add(cat.EstimatedSubtotal)
		stats.ActualTotal = stats.ActualTotal.Add(cat.ActualSubtotal)

		v := ComputeVariance(cat.EstimatedSubtotal, cat.ActualSubtotal)
		switch {
		case v.Variance.IsPositive():
			stats.CategoriesOverBudget++
		case v.Variance.IsNegative():
			stats.CategoriesUnderBudget++
		}
	}

	for _, actual := range actuals {
		if actual.SourceType != models.SourceTypeReceipt {
			continue
		}
		stats.ReceiptTotal = stats.ReceiptTotal.Add(actual.Amount)
		if actual.CategoryID == nil {
			stats.UnmappedReceiptTotal = stats.UnmappedReceiptTotal.Add(actual.Amount)
		}
	}

	return stats
}
