package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/services"
)

// SyncHandler handles production calendar and daily sync requests.
type SyncHandler struct {
	syncService     services.SyncServicer
	calendarService services.CalendarServicer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService services.SyncServicer, calendarService services.CalendarServicer) *SyncHandler {
	return &SyncHandler{syncService: syncService, calendarService: calendarService}
}

// ProductionDayRequest is one calendar day in a SetProductionDaysRequest.
type ProductionDayRequest struct {
	Date  time.Time              `json:"date" binding:"required"`
	Phase models.ProductionPhase `json:"phase" binding:"required,production_phase"`
}

// SetProductionDaysRequest represents the request payload for replacing a
// budget's production calendar.
type SetProductionDaysRequest struct {
	Days []ProductionDayRequest `json:"days" binding:"required,min=1,dive"`
}

// SyncRequest represents the request payload for a daily sync run.
type SyncRequest struct {
	SyncMode    string `json:"sync_mode" binding:"omitempty,oneof=replace"`
	SplitMethod string `json:"split_method" binding:"omitempty,oneof=first_day equal"`
}

// SetProductionDays handles replacing the production calendar.
// @Summary     Set production days
// @Description Replace the budget's production calendar; day numbers are assigned by date order
// @Tags        calendar
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Budget ID"
// @Param       request body SetProductionDaysRequest true "Calendar days"
// @Success     200 {array} models.ProductionDay "Production days"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /budgets/{id}/production-days [put]
func (h *SyncHandler) SetProductionDays(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetProductionDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	days := make([]services.ProductionDayInput, len(req.Days))
	for i, d := range req.Days {
		days[i] = services.ProductionDayInput{Date: d.Date, Phase: d.Phase}
	}

	saved, err := h.calendarService.SetProductionDays(budgetID, days)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"production_days": saved})
}

// GetProductionDays handles listing the production calendar.
// @Summary     List production days
// @Tags        calendar
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {array} models.ProductionDay "Production days"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/production-days [get]
func (h *SyncHandler) GetProductionDays(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	days, err := h.calendarService.GetProductionDays(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"production_days": days})
}

// SyncToDaily handles distributing line item costs across production days.
// @Summary     Sync budget to daily costs
// @Description Distribute every non-tax line item across its phase days; atomic per budget and idempotent for unchanged items
// @Tags        sync
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int         true  "Budget ID"
// @Param       request body SyncRequest false "Sync options"
// @Success     200 {object} services.SyncResult "Sync result"
// @Failure     400 {object} ErrorResponse "Calendar empty"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Sync already in progress"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /budgets/{id}/sync-to-daily [post]
func (h *SyncHandler) SyncToDaily(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	result, err := h.syncService.SyncToDaily(budgetID, services.SyncConfig{
		SyncMode:    req.SyncMode,
		SplitMethod: req.SplitMethod,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GetDailyAllocations handles listing a budget's daily cost allocations.
// @Summary     List daily allocations
// @Tags        sync
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {array} models.DailyAllocation "Daily allocations"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/daily-allocations [get]
func (h *SyncHandler) GetDailyAllocations(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	allocations, err := h.syncService.GetDailyAllocations(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_allocations": allocations})
}
