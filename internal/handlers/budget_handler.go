package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/pagination"
	"topsheet/internal/services"
)

// BudgetHandler handles budget lifecycle requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name               string            `json:"name" binding:"required,min=1,max=200"`
	Currency           string            `json:"currency" binding:"omitempty,iso4217"`
	ContingencyPercent decimal.Decimal   `json:"contingency_percent"`
	BudgetType         models.BudgetType `json:"budget_type" binding:"omitempty,budget_type"`
	Notes              string            `json:"notes"`
	TemplateKind       string            `json:"template_kind"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// Status is updated separately through the transition endpoint.
type UpdateBudgetRequest struct {
	Name               *string              `json:"name" binding:"omitempty,min=1,max=200"`
	Currency           *string              `json:"currency" binding:"omitempty,iso4217"`
	ContingencyPercent *decimal.Decimal     `json:"contingency_percent"`
	BudgetType         *models.BudgetType   `json:"budget_type" binding:"omitempty,budget_type"`
	Notes              *string              `json:"notes"`
	Status             *models.BudgetStatus `json:"status" binding:"omitempty,budget_status"`
}

// CloneBudgetRequest represents the request payload for cloning a budget.
type CloneBudgetRequest struct {
	Name string `json:"name" binding:"omitempty,min=1,max=200"`
}

// CreateBudget handles budget creation, optionally from a template.
// @Summary     Create a budget
// @Description Create a new production budget, optionally seeded from a built-in template
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(services.CreateBudgetInput{
		Name:               req.Name,
		Currency:           req.Currency,
		ContingencyPercent: req.ContingencyPercent,
		BudgetType:         req.BudgetType,
		Notes:              req.Notes,
		TemplateKind:       req.TemplateKind,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets.
// @Summary     List budgets
// @Description Get a paginated list of budgets with optional status and type filters
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       status      query string false "Filter by status"
// @Param       budget_type query string false "Filter by budget type"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.BudgetFilter
	if v := c.Query("status"); v != "" {
		status := models.BudgetStatus(v)
		if !status.IsValid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown status filter"))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("budget_type"); v != "" {
		budgetType := models.BudgetType(v)
		switch budgetType {
		case models.BudgetTypeEstimate, models.BudgetTypeActual, models.BudgetTypeDraft:
			filter.BudgetType = &budgetType
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget_type filter"))
			return
		}
	}

	result, err := h.budgetService.GetBudgets(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBudget handles fetching a single budget with categories and line items.
// @Summary     Get a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles budget field updates and status transitions.
// @Summary     Update a budget
// @Description Update budget fields; a locked budget only accepts a status transition
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// Status transitions are legal even on a locked budget; everything else
	// is not. Apply the transition first so a lone status change succeeds.
	var budget *models.Budget
	if req.Status != nil {
		budget, err = h.budgetService.TransitionStatus(budgetID, *req.Status)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	if req.Name != nil || req.Currency != nil || req.ContingencyPercent != nil || req.BudgetType != nil || req.Notes != nil {
		budget, err = h.budgetService.UpdateBudget(budgetID, services.UpdateBudgetInput{
			Name:               req.Name,
			Currency:           req.Currency,
			ContingencyPercent: req.ContingencyPercent,
			BudgetType:         req.BudgetType,
			Notes:              req.Notes,
		})
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	if budget == nil {
		budget, err = h.budgetService.GetBudgetByID(budgetID)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// LockBudget handles locking a budget.
// @Summary     Lock a budget
// @Description Lock a budget; locking is irreversible through the standard API
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.Budget "Locked budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Invalid status transition"
// @Router      /budgets/{id}/lock [post]
func (h *BudgetHandler) LockBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.LockBudget(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget and all dependent records.
// @Summary     Delete a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(budgetID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CloneBudget handles deep-copying a budget.
// @Summary     Clone a budget
// @Description Create a draft copy with all categories and line items, zeroed actuals, no daily allocations
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Budget ID"
// @Param       request body CloneBudgetRequest false "Clone options"
// @Success     201 {object} models.Budget "Cloned budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/clone [post]
func (h *BudgetHandler) CloneBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CloneBudgetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	clone, err := h.budgetService.CloneBudget(budgetID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"budget": clone})
}

// DiffBudgets handles comparing two budgets category by category.
// @Summary     Diff two budgets
// @Description Compare two budgets per category (matched by code, name fallback); deltas are B minus A
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       a query int true "Budget A ID"
// @Param       b query int true "Budget B ID"
// @Success     200 {object} services.BudgetDiff "Diff"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/diff [get]
func (h *BudgetHandler) DiffBudgets(c *gin.Context) {
	parseQueryID := func(name string) (uint, error) {
		id, err := strconv.ParseUint(c.Query(name), 10, 32)
		if err != nil {
			return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name)
		}
		return uint(id), nil
	}

	budgetA, err := parseQueryID("a")
	if err != nil {
		respondWithError(c, err)
		return
	}
	budgetB, err := parseQueryID("b")
	if err != nil {
		respondWithError(c, err)
		return
	}

	diff, err := h.budgetService.DiffBudgets(budgetA, budgetB)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diff": diff})
}

// GetBudgetStats handles the budget statistics view.
// @Summary     Get budget stats
// @Description Estimated/actual totals, receipt tracking, and over/under budget category counts
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetStats "Stats"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/stats [get]
func (h *BudgetHandler) GetBudgetStats(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.budgetService.GetBudgetStats(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
