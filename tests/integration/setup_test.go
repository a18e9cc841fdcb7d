package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"topsheet/internal/handlers"
	"topsheet/internal/logger"
	"topsheet/internal/middleware"
	"topsheet/internal/models"
	"topsheet/internal/services"
	"topsheet/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Budget{},
		&models.BudgetCategory{},
		&models.BudgetLineItem{},
		&models.BudgetActual{},
		&models.ProductionDay{},
		&models.DailyAllocation{},
		&models.TopSheetSnapshot{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	budgetService := services.NewBudgetService(db)
	categoryService := services.NewCategoryService(db)
	lineItemService := services.NewLineItemService(db, categoryService)
	topSheetService := services.NewTopSheetService(db)
	actualsService := services.NewActualsService(db, categoryService)
	syncService := services.NewSyncService(db)
	calendarService := services.NewCalendarService(db)

	// Handlers
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	lineItemHandler := handlers.NewLineItemHandler(lineItemService)
	topSheetHandler := handlers.NewTopSheetHandler(topSheetService)
	actualsHandler := handlers.NewActualsHandler(actualsService)
	syncHandler := handlers.NewSyncHandler(syncService, calendarService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/diff", budgetHandler.DiffBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.POST("/:id/lock", budgetHandler.LockBudget)
	budgets.POST("/:id/clone", budgetHandler.CloneBudget)
	budgets.GET("/:id/stats", budgetHandler.GetBudgetStats)
	budgets.POST("/:id/categories", categoryHandler.CreateCategory)
	budgets.GET("/:id/categories", categoryHandler.GetBudgetCategories)
	budgets.GET("/:id/topsheet", topSheetHandler.GetTopSheet)
	budgets.POST("/:id/topsheet/compute", topSheetHandler.ComputeTopSheet)
	budgets.POST("/:id/actuals", actualsHandler.RecordActual)
	budgets.GET("/:id/actuals", actualsHandler.GetBudgetActuals)
	budgets.PUT("/:id/production-days", syncHandler.SetProductionDays)
	budgets.GET("/:id/production-days", syncHandler.GetProductionDays)
	budgets.POST("/:id/sync-to-daily", syncHandler.SyncToDaily)
	budgets.GET("/:id/daily-allocations", syncHandler.GetDailyAllocations)

	categories := v1.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/line-items", lineItemHandler.CreateLineItem)
	categories.GET("/:id/line-items", lineItemHandler.GetCategoryLineItems)

	lineItems := v1.Group("/line-items")
	lineItems.GET("/:id", lineItemHandler.GetLineItem)
	lineItems.PUT("/:id", lineItemHandler.UpdateLineItem)
	lineItems.DELETE("/:id", lineItemHandler.DeleteLineItem)

	actuals := v1.Group("/actuals")
	actuals.PUT("/:id/reassign", actualsHandler.ReassignActual)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// token mints a bearer token the way the external identity service would.
func token(t *testing.T, userID uint, name string) string {
	t.Helper()
	tok, err := middleware.GenerateToken(userID, name)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return tok
}

// createBudget creates a budget over the API and returns its ID.
func (app *testApp) createBudget(t *testing.T, tok, body string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/budgets", body, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	return budget["id"].(float64)
}

// createCategory creates a category over the API and returns its ID.
func (app *testApp) createCategory(t *testing.T, tok string, budgetID float64, body string) float64 {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/budgets/%.0f/categories", budgetID), body, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	category := parseJSON(t, rec)["category"].(map[string]interface{})
	return category["id"].(float64)
}

// createLineItem creates a line item over the API and returns its ID.
func (app *testApp) createLineItem(t *testing.T, tok string, categoryID float64, body string) float64 {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%.0f/line-items", categoryID), body, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create line item failed: %d %s", rec.Code, rec.Body.String())
	}
	item := parseJSON(t, rec)["line_item"].(map[string]interface{})
	return item["id"].(float64)
}
