package services

import (
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
)

var seven = decimal.NewFromInt(7)

// syncService implements the daily sync distributor. A per-budget in-flight
// guard rejects overlapping syncs so the diff-and-replace below can never
// interleave.
type syncService struct {
	db *gorm.DB

	mu       sync.Mutex
	inFlight map[uint]bool
}

// NewSyncService creates a new SyncServicer.
func NewSyncService(db *gorm.DB) SyncServicer {
	return &syncService{
		db:       db,
		inFlight: make(map[uint]bool),
	}
}

func (s *syncService) acquire(budgetID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[budgetID] {
		return false
	}
	s.inFlight[budgetID] = true
	return true
}

func (s *syncService) release(budgetID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, budgetID)
}

// allocationKey identifies one (line item, production day) cell.
type allocationKey struct {
	lineItemID uint
	dayID      uint
}

// SyncToDaily distributes every non-tax line item's cost across the
// budget's production days, then diffs against the previous sync inside a
// single transaction: creates, updates, and removals commit together or
// not at all. Re-running with unchanged line items is a no-op.
func (s *syncService) SyncToDaily(budgetID uint, config SyncConfig) (*SyncResult, error) {
	if config.SyncMode == "" {
		config.SyncMode = SyncModeReplace
	}
	if config.SyncMode != SyncModeReplace {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown sync_mode: "+config.SyncMode)
	}
	if config.SplitMethod == "" {
		config.SplitMethod = SplitMethodFirstDay
	}
	if config.SplitMethod != SplitMethodFirstDay && config.SplitMethod != SplitMethodEqual {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown split_method: "+config.SplitMethod)
	}

	if !s.acquire(budgetID) {
		return nil, apperrors.ErrSyncConflict
	}
	defer s.release(budgetID)

	if _, err := editableBudget(s.db, budgetID); err != nil {
		return nil, err
	}

	var days []models.ProductionDay
	err := s.db.Where("budget_id = ?", budgetID).Order("day_number, id").Find(&days).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(days) == 0 {
		return nil, apperrors.ErrCalendarEmpty
	}

	var categories []models.BudgetCategory
	if err := s.db.Where("budget_id = ?", budgetID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	categoryTypes := make(map[uint]models.CategoryType, len(categories))
	categoryIDs := make([]uint, 0, len(categories))
	for _, cat := range categories {
		categoryTypes[cat.ID] = cat.CategoryType
		categoryIDs = append(categoryIDs, cat.ID)
	}

	var items []models.BudgetLineItem
	if len(categoryIDs) > 0 {
		err = s.db.Where("category_id IN ? AND is_tax_line_item = ?", categoryIDs, false).
			Order("id").Find(&items).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	// Compute the desired allocation set for every line item.
	desired := make(map[allocationKey]decimal.Decimal)
	for _, item := range items {
		phase := item.EffectivePhase(categoryTypes[item.CategoryID])
		phaseDays := make([]models.ProductionDay, 0, len(days))
		for _, day := range days {
			if day.Phase == phase {
				phaseDays = append(phaseDays, day)
			}
		}
		// A phase with no calendar days falls back to the full calendar so
		// the cost is never silently dropped.
		if len(phaseDays) == 0 {
			phaseDays = days
		}

		for dayID, amount := range distributeLineItem(&item, phaseDays, config.SplitMethod) {
			if amount.IsZero() {
				continue
			}
			desired[allocationKey{lineItemID: item.ID, dayID: dayID}] = amount
		}
	}

	var existing []models.DailyAllocation
	if err := s.db.Where("budget_id = ?", budgetID).Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &SyncResult{}
	daysTouched := make(map[uint]bool)
	for key := range desired {
		daysTouched[key.dayID] = true
	}
	result.TotalDaysSynced = len(daysTouched)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		pending := make(map[allocationKey]decimal.Decimal, len(desired))
		for key, amount := range desired {
			pending[key] = amount
		}

		for _, alloc := range existing {
			key := allocationKey{lineItemID: alloc.LineItemID, dayID: alloc.ProductionDayID}
			want, ok := pending[key]
			if !ok {
				if err := tx.Delete(&models.DailyAllocation{}, alloc.ID).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				result.TotalItemsRemoved++
				continue
			}
			delete(pending, key)
			if !alloc.AllocatedAmount.Equal(want) {
				err := tx.Model(&models.DailyAllocation{}).Where("id = ?", alloc.ID).
					Update("allocated_amount", want).Error
				if err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				result.TotalItemsUpdated++
			}
		}

		for key, amount := range pending {
			alloc := models.DailyAllocation{
				BudgetID:        budgetID,
				LineItemID:      key.lineItemID,
				ProductionDayID: key.dayID,
				AllocatedAmount: amount,
			}
			if err := tx.Create(&alloc).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result.TotalItemsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// distributeLineItem spreads one line item's cost across its phase days
// according to rate type. The sum of returned amounts always equals the
// portion of the item's cost that fits in the available days.
func distributeLineItem(item *models.BudgetLineItem, phaseDays []models.ProductionDay, splitMethod string) map[uint]decimal.Decimal {
	out := make(map[uint]decimal.Decimal)
	if len(phaseDays) == 0 {
		return out
	}

	switch item.RateType {
	case models.RateTypeDaily:
		// rate per day for quantity days, capped at the phase's day count.
		wholeDays := int(item.Quantity.IntPart())
		fraction := item.Quantity.Sub(decimal.NewFromInt(int64(wholeDays)))
		for i := 0; i < wholeDays && i < len(phaseDays); i++ {
			out[phaseDays[i].ID] = item.RateAmount
		}
		if fraction.IsPositive() && wholeDays < len(phaseDays) {
			out[phaseDays[wholeDays].ID] = item.RateAmount.Mul(fraction).Round(2)
		}

	case models.RateTypeWeekly:
		// rate divided across 7-day buckets aligned to the phase start.
		daysWanted := int(item.Quantity.Mul(seven).Ceil().IntPart())
		if daysWanted > len(phaseDays) {
			daysWanted = len(phaseDays)
		}
		perDay := item.RateAmount.DivRound(seven, 2)
		for start := 0; start < daysWanted; start += 7 {
			end := start + 7
			if end > daysWanted {
				end = daysWanted
			}
			for i := start; i < end; i++ {
				out[phaseDays[i].ID] = perDay
			}
			// A full week conserves the exact weekly rate; the bucket's
			// first day absorbs the rounding remainder.
			if end-start == 7 {
				remainder := item.RateAmount.Sub(perDay.Mul(seven))
				out[phaseDays[start].ID] = perDay.Add(remainder)
			}
		}

	case models.RateTypeHourly, models.RateTypePerUnit:
		// single-day allocation unless a day-count hint spreads it.
		if item.DayCountHint != nil && *item.DayCountHint > 1 {
			spreadEqually(out, item.EstimatedTotal, phaseDays, *item.DayCountHint)
		} else {
			out[phaseDays[0].ID] = item.EstimatedTotal
		}

	default: // flat
		if splitMethod == SplitMethodEqual && item.IsDivisible && len(phaseDays) > 1 {
			spreadEqually(out, item.EstimatedTotal, phaseDays, len(phaseDays))
		} else {
			out[phaseDays[0].ID] = item.EstimatedTotal
		}
	}

	return out
}

// spreadEqually splits total across up to n of the given days, giving the
// first day whatever rounding remainder is left so nothing leaks.
func spreadEqually(out map[uint]decimal.Decimal, total decimal.Decimal, days []models.ProductionDay, n int) {
	if n > len(days) {
		n = len(days)
	}
	if n <= 0 {
		return
	}
	perDay := total.DivRound(decimal.NewFromInt(int64(n)), 2)
	for i := 0; i < n; i++ {
		out[days[i].ID] = perDay
	}
	remainder := total.Sub(perDay.Mul(decimal.NewFromInt(int64(n))))
	out[days[0].ID] = perDay.Add(remainder)
}

// GetDailyAllocations returns the current daily schedule for a budget.
func (s *syncService) GetDailyAllocations(budgetID uint) ([]models.DailyAllocation, error) {
	if _, err := loadBudget(s.db, budgetID); err != nil {
		return nil, err
	}

	var allocations []models.DailyAllocation
	err := s.db.Where("budget_id = ?", budgetID).Order("production_day_id, line_item_id").Find(&allocations).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return allocations, nil
}
