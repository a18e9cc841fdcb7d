package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn      func(budgetID uint, input services.CreateCategoryInput) (*models.BudgetCategory, error)
	getBudgetCategoriesFn func(budgetID uint) ([]models.BudgetCategory, error)
	getCategoryByIDFn     func(categoryID uint) (*models.BudgetCategory, error)
	updateCategoryFn      func(categoryID uint, input services.UpdateCategoryInput) (*models.BudgetCategory, error)
	deleteCategoryFn      func(categoryID uint) error
}

func (m *mockCategoryService) CreateCategory(budgetID uint, input services.CreateCategoryInput) (*models.BudgetCategory, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(budgetID, input)
	}
	return &models.BudgetCategory{}, nil
}

func (m *mockCategoryService) GetBudgetCategories(budgetID uint) ([]models.BudgetCategory, error) {
	if m.getBudgetCategoriesFn != nil {
		return m.getBudgetCategoriesFn(budgetID)
	}
	return []models.BudgetCategory{}, nil
}

func (m *mockCategoryService) GetCategoryByID(categoryID uint) (*models.BudgetCategory, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(categoryID)
	}
	return &models.BudgetCategory{}, nil
}

func (m *mockCategoryService) UpdateCategory(categoryID uint, input services.UpdateCategoryInput) (*models.BudgetCategory, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(categoryID, input)
	}
	return &models.BudgetCategory{}, nil
}

func (m *mockCategoryService) DeleteCategory(categoryID uint) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(categoryID)
	}
	return nil
}

func (m *mockCategoryService) RecomputeCategory(_ *gorm.DB, _ uint) error {
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectSubmitter(1, "Test Submitter"))
	auth.POST("/budgets/:id/categories", handler.CreateCategory)
	auth.GET("/budgets/:id/categories", handler.GetBudgetCategories)
	auth.GET("/categories/:id", handler.GetCategory)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(budgetID uint, input services.CreateCategoryInput) (*models.BudgetCategory, error) {
				return &models.BudgetCategory{
					Base:         models.Base{ID: 1},
					BudgetID:     budgetID,
					Name:         input.Name,
					Code:         input.Code,
					CategoryType: input.CategoryType,
				}, nil
			},
		}
		handler := NewCategoryHandler(svc)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/categories",
			`{"name":"Camera","code":"2300","category_type":"production"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Camera" {
			t.Errorf("expected Camera, got %v", category["name"])
		}
	})

	t.Run("returns 400 on missing category type", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/categories", `{"name":"Camera"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on bad hex color", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/categories",
			`{"name":"Camera","category_type":"production","color":"blue"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 423 on locked budget", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(_ uint, _ services.CreateCategoryInput) (*models.BudgetCategory, error) {
				return nil, apperrors.ErrBudgetLocked
			},
		}
		handler := NewCategoryHandler(svc)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/categories",
			`{"name":"Camera","category_type":"production"}`)

		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_LOCKED")
	})
}

func TestCategoryHandler_GetBudgetCategories(t *testing.T) {
	t.Run("returns 200 with categories", func(t *testing.T) {
		svc := &mockCategoryService{
			getBudgetCategoriesFn: func(_ uint) ([]models.BudgetCategory, error) {
				return []models.BudgetCategory{
					{Base: models.Base{ID: 1}, Name: "Talent", EstimatedSubtotal: decimal.RequireFromString("50000.00")},
					{Base: models.Base{ID: 2}, Name: "Camera"},
				}, nil
			},
		}
		handler := NewCategoryHandler(svc)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		categories := parseJSON(t, rec)["categories"].([]interface{})
		if len(categories) != 2 {
			t.Errorf("expected 2 categories, got %d", len(categories))
		}
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var captured services.UpdateCategoryInput
		svc := &mockCategoryService{
			updateCategoryFn: func(_ uint, input services.UpdateCategoryInput) (*models.BudgetCategory, error) {
				captured = input
				return &models.BudgetCategory{}, nil
			},
		}
		handler := NewCategoryHandler(svc)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/1", `{"is_taxable":true,"tax_rate":"0.0825"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.IsTaxable == nil || !*captured.IsTaxable {
			t.Error("expected is_taxable=true to be passed")
		}
		if captured.TaxRate == nil || !captured.TaxRate.Equal(decimal.RequireFromString("0.0825")) {
			t.Error("expected tax_rate=0.0825 to be passed")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_ uint, _ services.UpdateCategoryInput) (*models.BudgetCategory, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		handler := NewCategoryHandler(svc)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/999", `{"name":"Renamed"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_ uint) error {
				return apperrors.ErrCategoryNotFound
			},
		}
		handler := NewCategoryHandler(svc)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
