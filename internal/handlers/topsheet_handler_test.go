package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "topsheet/internal/errors"
	"topsheet/internal/models"
	"topsheet/internal/services"
)

// --- mock top sheet service ---

type mockTopSheetService struct {
	getTopSheetFn     func(budgetID uint) (*models.TopSheet, error)
	computeTopSheetFn func(budgetID uint) (*models.TopSheet, error)
}

func (m *mockTopSheetService) GetTopSheet(budgetID uint) (*models.TopSheet, error) {
	if m.getTopSheetFn != nil {
		return m.getTopSheetFn(budgetID)
	}
	return &models.TopSheet{}, nil
}

func (m *mockTopSheetService) ComputeTopSheet(budgetID uint) (*models.TopSheet, error) {
	if m.computeTopSheetFn != nil {
		return m.computeTopSheetFn(budgetID)
	}
	return &models.TopSheet{}, nil
}

var _ services.TopSheetServicer = (*mockTopSheetService)(nil)

func setupTopSheetRouter(handler *TopSheetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectSubmitter(1, "Test Submitter"))
	auth.GET("/budgets/:id/topsheet", handler.GetTopSheet)
	auth.POST("/budgets/:id/topsheet/compute", handler.ComputeTopSheet)
	return r
}

func TestTopSheetHandler_GetTopSheet(t *testing.T) {
	t.Run("returns 200 with staleness flag", func(t *testing.T) {
		svc := &mockTopSheetService{
			getTopSheetFn: func(budgetID uint) (*models.TopSheet, error) {
				return &models.TopSheet{
					BudgetID:     budgetID,
					Subtotal:     decimal.RequireFromString("100000.00"),
					GrandTotal:   decimal.RequireFromString("110000.00"),
					LastComputed: time.Now(),
					IsStale:      true,
				}, nil
			},
		}
		handler := NewTopSheetHandler(svc)
		r := setupTopSheetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/1/topsheet", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		sheet := parseJSON(t, rec)["topsheet"].(map[string]interface{})
		if sheet["is_stale"] != true {
			t.Errorf("expected is_stale=true, got %v", sheet["is_stale"])
		}
		if sheet["grand_total"] != "110000" {
			t.Errorf("expected grand_total 110000, got %v", sheet["grand_total"])
		}
	})

	t.Run("returns 404 when budget not found", func(t *testing.T) {
		svc := &mockTopSheetService{
			getTopSheetFn: func(_ uint) (*models.TopSheet, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewTopSheetHandler(svc)
		r := setupTopSheetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/999/topsheet", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestTopSheetHandler_ComputeTopSheet(t *testing.T) {
	t.Run("returns 200 with fresh sheet", func(t *testing.T) {
		svc := &mockTopSheetService{
			computeTopSheetFn: func(budgetID uint) (*models.TopSheet, error) {
				return &models.TopSheet{BudgetID: budgetID, IsStale: false}, nil
			},
		}
		handler := NewTopSheetHandler(svc)
		r := setupTopSheetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/topsheet/compute", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		sheet := parseJSON(t, rec)["topsheet"].(map[string]interface{})
		if sheet["is_stale"] != false {
			t.Errorf("expected is_stale=false, got %v", sheet["is_stale"])
		}
	})

	t.Run("returns 500 on integrity violation", func(t *testing.T) {
		svc := &mockTopSheetService{
			computeTopSheetFn: func(_ uint) (*models.TopSheet, error) {
				return nil, apperrors.ErrIntegrityViolation
			},
		}
		handler := NewTopSheetHandler(svc)
		r := setupTopSheetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/1/topsheet/compute", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTEGRITY_VIOLATION")
	})
}
