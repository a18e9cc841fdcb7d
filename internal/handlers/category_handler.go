package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/services"
)

// CategoryHandler handles budget category requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=200"`
	Code         string              `json:"code" binding:"omitempty,max=20"`
	CategoryType models.CategoryType `json:"category_type" binding:"required,category_type"`
	Color        string              `json:"color" binding:"omitempty,hex_color"`
	IsTaxable    bool                `json:"is_taxable"`
	TaxRate      decimal.Decimal     `json:"tax_rate"`
	IsFringe     bool                `json:"is_fringe"`
	SortOrder    int                 `json:"sort_order"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
type UpdateCategoryRequest struct {
	Name         *string              `json:"name" binding:"omitempty,min=1,max=200"`
	Code         *string              `json:"code" binding:"omitempty,max=20"`
	CategoryType *models.CategoryType `json:"category_type" binding:"omitempty,category_type"`
	Color        *string              `json:"color" binding:"omitempty,hex_color"`
	IsTaxable    *bool                `json:"is_taxable"`
	TaxRate      *decimal.Decimal     `json:"tax_rate"`
	IsFringe     *bool                `json:"is_fringe"`
	SortOrder    *int                 `json:"sort_order"`
}

// CreateCategory handles category creation within a budget.
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Budget ID"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.BudgetCategory "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /budgets/{id}/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(budgetID, services.CreateCategoryInput{
		Name:         req.Name,
		Code:         req.Code,
		CategoryType: req.CategoryType,
		Color:        req.Color,
		IsTaxable:    req.IsTaxable,
		TaxRate:      req.TaxRate,
		IsFringe:     req.IsFringe,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetBudgetCategories handles listing a budget's categories with line items.
// @Summary     List budget categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {array} models.BudgetCategory "Categories"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/categories [get]
func (h *CategoryHandler) GetBudgetCategories(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.GetBudgetCategories(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory handles fetching a single category.
// @Summary     Get a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} models.BudgetCategory "Category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles category field updates.
// @Summary     Update a category
// @Description Update category fields; tax settings trigger a subtotal recompute
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.BudgetCategory "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(categoryID, services.UpdateCategoryInput{
		Name:         req.Name,
		Code:         req.Code,
		CategoryType: req.CategoryType,
		Color:        req.Color,
		IsTaxable:    req.IsTaxable,
		TaxRate:      req.TaxRate,
		IsFringe:     req.IsFringe,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category and its line items.
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     423 {object} ErrorResponse "Budget locked"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(categoryID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
