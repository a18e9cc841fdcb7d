package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"topsheet/internal/models"
	"topsheet/internal/pagination"
)

// CreateBudgetInput holds the fields for creating a budget. TemplateKind,
// when set, seeds the budget with a built-in category template.
type CreateBudgetInput struct {
	Name               string
	Currency           string
	ContingencyPercent decimal.Decimal
	BudgetType         models.BudgetType
	Notes              string
	TemplateKind       string
}

// UpdateBudgetInput holds optional budget field updates. Nil fields are
// left unchanged. Status moves through TransitionStatus, not here.
type UpdateBudgetInput struct {
	Name               *string
	Currency           *string
	ContingencyPercent *decimal.Decimal
	BudgetType         *models.BudgetType
	Notes              *string
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Status     *models.BudgetStatus
	BudgetType *models.BudgetType
}

// CategoryRef identifies a category present in only one side of a diff.
type CategoryRef struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	EstimatedSubtotal decimal.Decimal `json:"estimated_subtotal"`
	ActualSubtotal    decimal.Decimal `json:"actual_subtotal"`
}

// CategoryDelta is the per-category difference between two budgets,
// computed as B minus A.
type CategoryDelta struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	EstimatedDelta decimal.Decimal `json:"estimated_delta"`
	ActualDelta    decimal.Decimal `json:"actual_delta"`
}

// BudgetDiff compares two budgets category by category, matched by code
// with a name fallback.
type BudgetDiff struct {
	Categories []CategoryDelta `json:"categories"`
	OnlyInA    []CategoryRef   `json:"only_in_a"`
	OnlyInB    []CategoryRef   `json:"only_in_b"`
}

// BudgetServicer defines the contract for budget lifecycle business logic.
type BudgetServicer interface {
	CreateBudget(input CreateBudgetInput) (*models.Budget, error)
	GetBudgetByID(budgetID uint) (*models.Budget, error)
	GetBudgets(page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	UpdateBudget(budgetID uint, input UpdateBudgetInput) (*models.Budget, error)
	TransitionStatus(budgetID uint, next models.BudgetStatus) (*models.Budget, error)
	LockBudget(budgetID uint) (*models.Budget, error)
	DeleteBudget(budgetID uint) error
	CloneBudget(budgetID uint, name string) (*models.Budget, error)
	DiffBudgets(budgetA, budgetB uint) (*BudgetDiff, error)
	GetBudgetStats(budgetID uint) (*BudgetStats, error)
}

// CreateCategoryInput holds the fields for creating a budget category.
type CreateCategoryInput struct {
	Name         string
	Code         string
	CategoryType models.CategoryType
	Color        string
	IsTaxable    bool
	TaxRate      decimal.Decimal
	IsFringe     bool
	SortOrder    int
}

// UpdateCategoryInput holds optional category field updates.
type UpdateCategoryInput struct {
	Name         *string
	Code         *string
	CategoryType *models.CategoryType
	Color        *string
	IsTaxable    *bool
	TaxRate      *decimal.Decimal
	IsFringe     *bool
	SortOrder    *int
}

// CategoryServicer defines the contract for category business logic.
// Every mutation recomputes the owning category's derived subtotals and the
// system tax line item before returning.
type CategoryServicer interface {
	CreateCategory(budgetID uint, input CreateCategoryInput) (*models.BudgetCategory, error)
	GetBudgetCategories(budgetID uint) ([]models.BudgetCategory, error)
	GetCategoryByID(categoryID uint) (*models.BudgetCategory, error)
	UpdateCategory(categoryID uint, input UpdateCategoryInput) (*models.BudgetCategory, error)
	DeleteCategory(categoryID uint) error
	RecomputeCategory(tx *gorm.DB, categoryID uint) error
}

// CreateLineItemInput holds the fields for creating a line item.
type CreateLineItemInput struct {
	Description  string
	RateType     models.RateType
	RateAmount   decimal.Decimal
	Quantity     decimal.Decimal
	Units        string
	Phase        models.ProductionPhase
	SortOrder    int
	IsDivisible  bool
	DayCountHint *int
}

// UpdateLineItemInput holds optional line item field updates.
type UpdateLineItemInput struct {
	Description  *string
	RateType     *models.RateType
	RateAmount   *decimal.Decimal
	Quantity     *decimal.Decimal
	Units        *string
	Phase        *models.ProductionPhase
	SortOrder    *int
	IsDivisible  *bool
	DayCountHint *int
	IsLocked     *bool
}

// LineItemServicer defines the contract for line item business logic.
type LineItemServicer interface {
	CreateLineItem(categoryID uint, input CreateLineItemInput) (*models.BudgetLineItem, error)
	GetCategoryLineItems(categoryID uint) ([]models.BudgetLineItem, error)
	GetLineItemByID(lineItemID uint) (*models.BudgetLineItem, error)
	UpdateLineItem(lineItemID uint, input UpdateLineItemInput) (*models.BudgetLineItem, error)
	DeleteLineItem(lineItemID uint) error
}

// TopSheetServicer defines the contract for the top sheet compute engine.
// GetTopSheet serves the cached snapshot with a staleness flag; compute is
// an explicit action so costly recomputation can be batched.
type TopSheetServicer interface {
	GetTopSheet(budgetID uint) (*models.TopSheet, error)
	ComputeTopSheet(budgetID uint) (*models.TopSheet, error)
}

// RecordActualInput holds the fields of an approved expense event.
type RecordActualInput struct {
	CategoryID    *uint
	LineItemID    *uint
	SourceType    models.SourceType
	Amount        decimal.Decimal
	RecordedAt    time.Time
	SubmitterID   uint
	SubmitterName string
	SourceDetails models.SourceDetails
}

// ActualEntry is one reconciled expense within a drill-down sub-group.
type ActualEntry struct {
	ID         uint                  `json:"id"`
	Amount     decimal.Decimal       `json:"amount"`
	RecordedAt time.Time             `json:"recorded_at"`
	Summary    string                `json:"summary"`
	Details    *models.SourceDetails `json:"details,omitempty"`
}

// ActualSubGroup groups a category's actuals by (submitter, source type).
// Two actuals from the same person but different source kinds never merge.
type ActualSubGroup struct {
	SubmitterID   uint              `json:"submitter_id"`
	SubmitterName string            `json:"submitter_name"`
	SourceType    models.SourceType `json:"source_type"`
	Total         decimal.Decimal   `json:"total"`
	Count         int               `json:"count"`
	Entries       []ActualEntry     `json:"entries"`
}

// ActualCategoryGroup is the per-category reconciliation rollup.
type ActualCategoryGroup struct {
	CategoryID   *uint            `json:"category_id,omitempty"`
	CategoryName string           `json:"category_name"`
	Total        decimal.Decimal  `json:"total"`
	SubGroups    []ActualSubGroup `json:"sub_groups"`
}

// ActualsView is the reconciled actual-spend view for a budget. Unmapped
// receipts are surfaced as a warning, never dropped or auto-assigned.
type ActualsView struct {
	Categories           []ActualCategoryGroup `json:"categories"`
	TotalAmount          decimal.Decimal       `json:"total_amount"`
	UnmappedReceiptTotal decimal.Decimal       `json:"unmapped_receipt_total"`
	UnmappedReceiptCount int                   `json:"unmapped_receipt_count"`
}

// ActualsServicer defines the contract for the actuals reconciliation engine.
type ActualsServicer interface {
	RecordActual(budgetID uint, input RecordActualInput) (*models.BudgetActual, error)
	ReassignActual(actualID uint, categoryID *uint) (*models.BudgetActual, error)
	GetBudgetActuals(budgetID uint, includeSourceDetails bool) (*ActualsView, error)
}

// Sync configuration values.
const (
	SyncModeReplace = "replace"

	SplitMethodFirstDay = "first_day"
	SplitMethodEqual    = "equal"
)

// SyncConfig controls a daily sync run.
type SyncConfig struct {
	SyncMode    string `json:"sync_mode"`
	SplitMethod string `json:"split_method"`
}

// SyncResult reports what a daily sync changed.
type SyncResult struct {
	TotalDaysSynced   int `json:"total_days_synced"`
	TotalItemsCreated int `json:"total_items_created"`
	TotalItemsUpdated int `json:"total_items_updated"`
	TotalItemsRemoved int `json:"total_items_removed"`
}

// SyncServicer defines the contract for the daily sync distributor.
// SyncToDaily is atomic at the budget level and idempotent for unchanged
// line items; concurrent syncs against the same budget are rejected.
type SyncServicer interface {
	SyncToDaily(budgetID uint, config SyncConfig) (*SyncResult, error)
	GetDailyAllocations(budgetID uint) ([]models.DailyAllocation, error)
}

// ProductionDayInput is one calendar day supplied by the project calendar.
type ProductionDayInput struct {
	Date  time.Time
	Phase models.ProductionPhase
}

// CalendarServicer defines the contract for the production calendar.
type CalendarServicer interface {
	SetProductionDays(budgetID uint, days []ProductionDayInput) ([]models.ProductionDay, error)
	GetProductionDays(budgetID uint) ([]models.ProductionDay, error)
}
