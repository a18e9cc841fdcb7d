package models

import "github.com/shopspring/decimal"

// DailyAllocation is one line item's cost share on one production day.
// Rows are created, updated, and removed exclusively by the daily sync;
// a sync replaces the full set for a budget atomically.
type DailyAllocation struct {
	Base
	BudgetID        uint            `gorm:"not null;index" json:"budget_id"`
	LineItemID      uint            `gorm:"not null;uniqueIndex:idx_alloc_item_day" json:"budget_line_item_id"`
	ProductionDayID uint            `gorm:"not null;uniqueIndex:idx_alloc_item_day" json:"production_day_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"allocated_amount"`
}
