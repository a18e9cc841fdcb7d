package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus represents where a budget sits in its approval lifecycle.
// Transitions are forward-only: once locked, a budget can only be archived.
type BudgetStatus string

const (
	BudgetStatusDraft           BudgetStatus = "draft"
	BudgetStatusPendingApproval BudgetStatus = "pending_approval"
	BudgetStatusApproved        BudgetStatus = "approved"
	BudgetStatusLocked          BudgetStatus = "locked"
	BudgetStatusArchived        BudgetStatus = "archived"
)

// statusRank orders the lifecycle states for forward-only transition checks.
var statusRank = map[BudgetStatus]int{
	BudgetStatusDraft:           0,
	BudgetStatusPendingApproval: 1,
	BudgetStatusApproved:        2,
	BudgetStatusLocked:          3,
	BudgetStatusArchived:        4,
}

// IsValid reports whether s is a known budget status.
func (s BudgetStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Any strictly forward move is permitted; there is no unlock path.
func (s BudgetStatus) CanTransitionTo(next BudgetStatus) bool {
	from, okFrom := statusRank[s]
	to, okTo := statusRank[next]
	return okFrom && okTo && to > from
}

// BudgetType distinguishes planning estimates from recorded-actual budgets.
type BudgetType string

const (
	BudgetTypeEstimate BudgetType = "estimate"
	BudgetTypeActual   BudgetType = "actual"
	BudgetTypeDraft    BudgetType = "draft"
)

// Budget is the root aggregate for a production budget.
type Budget struct {
	Base
	Name               string          `gorm:"not null" json:"name"`
	Currency           string          `gorm:"not null;default:USD" json:"currency"`
	ContingencyPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"contingency_percent"`
	Status             BudgetStatus    `gorm:"not null;default:draft" json:"status"`
	BudgetType         BudgetType      `gorm:"not null;default:estimate" json:"budget_type"`
	Notes              string          `json:"notes"`

	// ContentUpdatedAt is bumped whenever any category or line item under
	// this budget mutates. The top sheet snapshot compares against it to
	// decide staleness.
	ContentUpdatedAt time.Time `json:"content_updated_at"`

	// Relationships
	Categories []BudgetCategory `gorm:"foreignKey:BudgetID" json:"categories,omitempty"`
}

// IsEditable reports whether categories, line items, and budget fields may
// still mutate. Locked and archived budgets reject all content mutation.
func (b *Budget) IsEditable() bool {
	return b.Status != BudgetStatusLocked && b.Status != BudgetStatusArchived
}
