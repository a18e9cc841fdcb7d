package models

import "github.com/shopspring/decimal"

// RateType describes how a line item's cost is quoted.
type RateType string

const (
	RateTypeFlat    RateType = "flat"
	RateTypeDaily   RateType = "daily"
	RateTypeWeekly  RateType = "weekly"
	RateTypeHourly  RateType = "hourly"
	RateTypePerUnit RateType = "per_unit"
)

// IsValid reports whether r is a known rate type.
func (r RateType) IsValid() bool {
	switch r {
	case RateTypeFlat, RateTypeDaily, RateTypeWeekly, RateTypeHourly, RateTypePerUnit:
		return true
	}
	return false
}

// ProductionPhase places a cost on the production calendar.
type ProductionPhase string

const (
	PhasePrep       ProductionPhase = "prep"
	PhaseProduction ProductionPhase = "production"
	PhaseWrap       ProductionPhase = "wrap"
)

// IsValid reports whether p is a known production phase.
func (p ProductionPhase) IsValid() bool {
	switch p {
	case PhasePrep, PhaseProduction, PhaseWrap:
		return true
	}
	return false
}

// BudgetLineItem is an atomic budgeted cost: rate x quantity within a
// category. Tax line items are system-generated, always sorted after regular
// items, and read-only through the public API.
type BudgetLineItem struct {
	Base
	CategoryID  uint     `gorm:"not null;index" json:"category_id"`
	Description string   `gorm:"not null" json:"description"`
	RateType    RateType `gorm:"not null;default:flat" json:"rate_type"`

	RateAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"rate_amount"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	Units          string          `json:"units"`
	EstimatedTotal decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"estimated_total"`
	ActualTotal    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"actual_total"`

	IsTaxLineItem bool `json:"is_tax_line_item"`
	IsLocked      bool `json:"is_locked"`
	SortOrder     int  `json:"sort_order"`

	// Phase overrides the owning category's phase for daily distribution.
	// Empty means "use the category's default phase".
	Phase ProductionPhase `json:"phase,omitempty"`

	// IsDivisible opts a flat-rate item into equal-split distribution.
	IsDivisible bool `json:"is_divisible"`

	// DayCountHint spreads an hourly or per-unit item across N days instead
	// of a single-day allocation.
	DayCountHint *int `json:"day_count_hint,omitempty"`
}

// EffectivePhase returns the item's own phase when set, falling back to the
// default phase for the owning category's type.
func (li *BudgetLineItem) EffectivePhase(categoryType CategoryType) ProductionPhase {
	if li.Phase.IsValid() {
		return li.Phase
	}
	return categoryType.DefaultPhase()
}

// TaxLineSortOrder keeps system tax items after every user-sorted line item.
const TaxLineSortOrder = 1 << 20
