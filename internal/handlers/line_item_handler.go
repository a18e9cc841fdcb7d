package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/services"
)

// LineItemHandler handles budget line item requests.
type LineItemHandler struct {
	lineItemService services.LineItemServicer
}

// NewLineItemHandler creates a new LineItemHandler.
func NewLineItemHandler(lineItemService services.LineItemServicer) *LineItemHandler {
	return &LineItemHandler{lineItemService: lineItemService}
}

// CreateLineItemRequest represents the request payload for creating a line item.
type CreateLineItemRequest struct {
	Description  string                 `json:"description" binding:"required,min=1,max=300"`
	RateType     models.RateType        `json:"rate_type" binding:"required,rate_type"`
	RateAmount   decimal.Decimal        `json:"rate_amount"`
	Quantity     decimal.Decimal        `json:"quantity"`
	Units        string                 `json:"units" binding:"omitempty,max=50"`
	Phase        models.ProductionPhase `json:"phase" binding:"omitempty,production_phase"`
	SortOrder    int                    `json:"sort_order"`
	IsDivisible  bool                   `json:"is_divisible"`
	DayCountHint *int                   `json:"day_count_hint" binding:"omitempty,min=1"`
}

// UpdateLineItemRequest represents the request payload for updating a line item.
type UpdateLineItemRequest struct {
	Description  *string                 `json:"description" binding:"omitempty,min=1,max=300"`
	RateType     *models.RateType        `json:"rate_type" binding:"omitempty,rate_type"`
	RateAmount   *decimal.Decimal        `json:"rate_amount"`
	Quantity     *decimal.Decimal        `json:"quantity"`
	Units        *string                 `json:"units" binding:"omitempty,max=50"`
	Phase        *models.ProductionPhase `json:"phase"`
	SortOrder    *int                    `json:"sort_order"`
	IsDivisible  *bool                   `json:"is_divisible"`
	DayCountHint *int                    `json:"day_count_hint" binding:"omitempty,min=1"`
	IsLocked     *bool                   `json:"is_locked"`
}

// CreateLineItem handles line item creation within a category.
// @Summary     Create a line item
// @Description Create a line item; its estimated total and the category subtotal recompute immediately
// @Tags        line-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Category ID"
// @Param       request body CreateLineItemRequest true "Line item details"
// @Success     201 {object} models.BudgetLineItem "Line item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /categories/{id}/line-items [post]
func (h *LineItemHandler) CreateLineItem(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	lineItem, err := h.lineItemService.CreateLineItem(categoryID, services.CreateLineItemInput{
		Description:  req.Description,
		RateType:     req.RateType,
		RateAmount:   req.RateAmount,
		Quantity:     req.Quantity,
		Units:        req.Units,
		Phase:        req.Phase,
		SortOrder:    req.SortOrder,
		IsDivisible:  req.IsDivisible,
		DayCountHint: req.DayCountHint,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"line_item": lineItem})
}

// GetCategoryLineItems handles listing a category's line items.
// @Summary     List category line items
// @Tags        line-items
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {array} models.BudgetLineItem "Line items"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/line-items [get]
func (h *LineItemHandler) GetCategoryLineItems(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	lineItems, err := h.lineItemService.GetCategoryLineItems(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line_items": lineItems})
}

// GetLineItem handles fetching a single line item.
// @Summary     Get a line item
// @Tags        line-items
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Line item ID"
// @Success     200 {object} models.BudgetLineItem "Line item"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Router      /line-items/{id} [get]
func (h *LineItemHandler) GetLineItem(c *gin.Context) {
	lineItemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	lineItem, err := h.lineItemService.GetLineItemByID(lineItemID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line_item": lineItem})
}

// UpdateLineItem handles line item field updates.
// @Summary     Update a line item
// @Description Update line item fields; system tax items are read-only and locked items only accept an unlock
// @Tags        line-items
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Line item ID"
// @Param       request body UpdateLineItemRequest true "Fields to update"
// @Success     200 {object} models.BudgetLineItem "Updated line item"
// @Failure     400 {object} ErrorResponse "Invalid input or tax line item"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /line-items/{id} [put]
func (h *LineItemHandler) UpdateLineItem(c *gin.Context) {
	lineItemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	lineItem, err := h.lineItemService.UpdateLineItem(lineItemID, services.UpdateLineItemInput{
		Description:  req.Description,
		RateType:     req.RateType,
		RateAmount:   req.RateAmount,
		Quantity:     req.Quantity,
		Units:        req.Units,
		Phase:        req.Phase,
		SortOrder:    req.SortOrder,
		IsDivisible:  req.IsDivisible,
		DayCountHint: req.DayCountHint,
		IsLocked:     req.IsLocked,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"line_item": lineItem})
}

// DeleteLineItem handles deleting a line item and its daily allocations.
// @Summary     Delete a line item
// @Tags        line-items
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Line item ID"
// @Success     204 "Deleted"
// @Failure     400 {object} ErrorResponse "Tax line item is read-only"
// @Failure     404 {object} ErrorResponse "Line item not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /line-items/{id} [delete]
func (h *LineItemHandler) DeleteLineItem(c *gin.Context) {
	lineItemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.lineItemService.DeleteLineItem(lineItemID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
