package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/services"
)

// ActualsHandler handles actuals reconciliation requests.
type ActualsHandler struct {
	actualsService services.ActualsServicer
}

// NewActualsHandler creates a new ActualsHandler.
func NewActualsHandler(actualsService services.ActualsServicer) *ActualsHandler {
	return &ActualsHandler{actualsService: actualsService}
}

// RecordActualRequest represents the request payload for recording an
// approved expense against a budget. The submitter comes from the token.
type RecordActualRequest struct {
	CategoryID    *uint                `json:"category_id"`
	LineItemID    *uint                `json:"line_item_id"`
	SourceType    models.SourceType    `json:"source_type" binding:"required,source_type"`
	Amount        decimal.Decimal      `json:"amount"`
	RecordedAt    *time.Time           `json:"recorded_at"`
	SourceDetails models.SourceDetails `json:"source_details"`
}

// ReassignActualRequest represents the request payload for moving an actual
// to a different category. A null category ID moves it to Uncategorized.
type ReassignActualRequest struct {
	CategoryID *uint `json:"category_id"`
}

// RecordActual handles recording an approved expense event.
// @Summary     Record an actual
// @Description Record an approved expense from one of the supported source kinds
// @Tags        actuals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body RecordActualRequest true "Expense details"
// @Success     201 {object} models.BudgetActual "Actual recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     423 {object} ErrorResponse "Budget archived"
// @Router      /budgets/{id}/actuals [post]
func (h *ActualsHandler) RecordActual(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	submitterID, submitterName, err := getSubmitter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	actual, err := h.actualsService.RecordActual(budgetID, services.RecordActualInput{
		CategoryID:    req.CategoryID,
		LineItemID:    req.LineItemID,
		SourceType:    req.SourceType,
		Amount:        req.Amount,
		RecordedAt:    recordedAt,
		SubmitterID:   submitterID,
		SubmitterName: submitterName,
		SourceDetails: req.SourceDetails,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"actual": actual})
}

// GetBudgetActuals handles the reconciled actuals drill-down view.
// @Summary     Get reconciled actuals
// @Description Actuals grouped by category, then by submitter and source kind; Uncategorized sorts last
// @Tags        actuals
// @Produce     json
// @Security    BearerAuth
// @Param       id              path  int  true  "Budget ID"
// @Param       include_details query bool false "Include raw source details per entry"
// @Success     200 {object} services.ActualsView "Reconciled actuals"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Integrity violation"
// @Router      /budgets/{id}/actuals [get]
func (h *ActualsHandler) GetBudgetActuals(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	includeDetails := c.Query("include_details") == "true"

	view, err := h.actualsService.GetBudgetActuals(budgetID, includeDetails)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actuals": view})
}

// ReassignActual handles moving an actual to another category.
// @Summary     Reassign an actual
// @Description Move an actual to a different category or back to Uncategorized; line item mapping is cleared
// @Tags        actuals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Actual ID"
// @Param       request body ReassignActualRequest true "Target category"
// @Success     200 {object} models.BudgetActual "Reassigned actual"
// @Failure     404 {object} ErrorResponse "Actual not found"
// @Failure     423 {object} ErrorResponse "Budget archived"
// @Router      /actuals/{id}/reassign [put]
func (h *ActualsHandler) ReassignActual(c *gin.Context) {
	actualID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReassignActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	actual, err := h.actualsService.ReassignActual(actualID, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actual": actual})
}
