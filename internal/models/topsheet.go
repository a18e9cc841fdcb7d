package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopSheetLine is one category row within a phase bucket.
type TopSheetLine struct {
	CategoryID uint            `json:"category_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Estimated  decimal.Decimal `json:"estimated"`
	Actual     decimal.Decimal `json:"actual"`
	Variance   decimal.Decimal `json:"variance"`
}

// TopSheetBucket is one of the four production-phase groupings.
type TopSheetBucket struct {
	CategoryType   CategoryType    `json:"category_type"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	ActualTotal    decimal.Decimal `json:"actual_total"`
	VarianceTotal  decimal.Decimal `json:"variance_total"`
	Lines          []TopSheetLine  `json:"lines"`
}

// TopSheet is the executive rollup of a budget: four phase buckets plus
// contingency, fringes, and grand total. Fully derived; the persisted
// snapshot is a cache, never the source of truth.
type TopSheet struct {
	BudgetID          uint             `json:"budget_id"`
	Buckets           []TopSheetBucket `json:"buckets"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	ContingencyAmount decimal.Decimal  `json:"contingency_amount"`
	FringesTotal      decimal.Decimal  `json:"fringes_total"`
	GrandTotal        decimal.Decimal  `json:"grand_total"`
	LastComputed      time.Time        `json:"last_computed"`
	IsStale           bool             `json:"is_stale"`
}

// TopSheetSnapshot caches the most recent explicit top sheet computation
// for a budget. Staleness is judged against Budget.ContentUpdatedAt.
type TopSheetSnapshot struct {
	Base
	BudgetID   uint      `gorm:"not null;uniqueIndex" json:"budget_id"`
	Payload    TopSheet  `gorm:"serializer:json" json:"payload"`
	ComputedAt time.Time `gorm:"not null" json:"computed_at"`
}
