package main

import (
	"fmt"
	"net/http"
	"os"
	"topsheet/internal/config"
	"topsheet/internal/database"
	"topsheet/internal/handlers"
	"topsheet/internal/logger"
	"topsheet/internal/middleware"
	"topsheet/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "topsheet/internal/docs" // Import swagger docs
)

// @title           TopSheet API
// @version         1.0
// @description     TopSheet is a production budgeting service: top sheet rollups, actuals reconciliation, and daily cost distribution for film and commercial productions.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	budgetService := services.NewBudgetService(db)
	categoryService := services.NewCategoryService(db)
	lineItemService := services.NewLineItemService(db, categoryService)
	topSheetService := services.NewTopSheetService(db)
	actualsService := services.NewActualsService(db, categoryService)
	syncService := services.NewSyncService(db)
	calendarService := services.NewCalendarService(db)

	// Initialize handlers
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	lineItemHandler := handlers.NewLineItemHandler(lineItemService)
	topSheetHandler := handlers.NewTopSheetHandler(topSheetService)
	actualsHandler := handlers.NewActualsHandler(actualsService)
	syncHandler := handlers.NewSyncHandler(syncService, calendarService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group; every route requires a valid token
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	// Budget routes
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

	// Category routes nested under a budget
	budgets.POST("/:id/categories", categoryHandler.CreateCategory)
	budgets.GET("/:id/categories", categoryHandler.GetBudgetCategories)

	// Top sheet routes
	budgets.GET("/:id/topsheet", topSheetHandler.GetTopSheet)
	budgets.POST("/:id/topsheet/compute", topSheetHandler.ComputeTopSheet)

	// Actuals routes
	budgets.POST("/:id/actuals", actualsHandler.RecordActual)
	budgets.GET("/:id/actuals", actualsHandler.GetBudgetActuals)

	// Calendar and daily sync routes
	budgets.PUT("/:id/production-days", syncHandler.SetProductionDays)
	budgets.GET("/:id/production-days", syncHandler.GetProductionDays)
	budgets.POST("/:id/sync-to-daily", syncHandler.SyncToDaily)
	budgets.GET("/:id/daily-allocations", syncHandler.GetDailyAllocations)

	// Category routes
	categories := v1.Group("/categories")
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/line-items", lineItemHandler.CreateLineItem)
	categories.GET("/:id/line-items", lineItemHandler.GetCategoryLineItems)

	// Line item routes
	lineItems := v1.Group("/line-items")
	lineItems.GET("/:id", lineItemHandler.GetLineItem)
	lineItems.PUT("/:id", lineItemHandler.UpdateLineItem)
	lineItems.DELETE("/:id", lineItemHandler.DeleteLineItem)

	// Actual reassignment
	actuals := v1.Group("/actuals")
	actuals.PUT("/:id/reassign", actualsHandler.ReassignActual)

	log.Infof("Starting TopSheet backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
