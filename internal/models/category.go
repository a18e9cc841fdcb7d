package models

import "github.com/shopspring/decimal"

// CategoryType buckets a category into one of the four top-sheet phases.
type CategoryType string

const (
	CategoryTypeAboveTheLine CategoryType = "above_the_line"
	CategoryTypeProduction   CategoryType = "production"
	CategoryTypePost         CategoryType = "post"
	CategoryTypeOther        CategoryType = "other"
)

// IsValid reports whether t is a known category type.
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeAboveTheLine, CategoryTypeProduction, CategoryTypePost, CategoryTypeOther:
		return true
	}
	return false
}

// DefaultPhase maps a category type to the production phase its line items
// fall into when an item carries no phase of its own.
func (t CategoryType) DefaultPhase() ProductionPhase {
	switch t {
	case CategoryTypeAboveTheLine:
		return PhasePrep
	case CategoryTypePost:
		return PhaseWrap
	default:
		return PhaseProduction
	}
}

// BudgetCategory is a group of line items within a budget.
// EstimatedSubtotal and ActualSubtotal are derived columns: they are
// recomputed from child line items and recorded actuals, never hand-edited.
type BudgetCategory struct {
	Base
	BudgetID     uint            `gorm:"not null;index" json:"budget_id"`
	Name         string          `gorm:"not null" json:"name"`
	Code         string          `json:"code"`
	CategoryType CategoryType    `gorm:"not null;default:other" json:"category_type"`
	Color        string          `json:"color"`
	IsTaxable    bool            `json:"is_taxable"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"tax_rate"`

	// IsFringe marks a fringe-bearing category. Fringe categories are summed
	// into the top sheet's fringes_total instead of a phase bucket.
	IsFringe  bool `json:"is_fringe"`
	SortOrder int  `json:"sort_order"`

	EstimatedSubtotal decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"estimated_subtotal"`
	ActualSubtotal    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"actual_subtotal"`

	// Relationships
	LineItems []BudgetLineItem `gorm:"foreignKey:CategoryID" json:"line_items,omitempty"`
}
