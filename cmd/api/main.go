package main

import (
	"fmt"
	"net/http"
	"os"

	"spendwise/internal/config"
	"spendwise/internal/database"
	_ "spendwise/internal/docs" // Import swagger docs
	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/services"
	"spendwise/internal/validator"
	"spendwise/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Spendwise API
// @version         1.0
// @description     Spendwise is a personal expense tracker: record dated expenses against categories and view live totals and reports.

// @host      localhost:8080
// @BasePath  /api

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

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db, categoryService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, categoryService)
	apiHandler := handlers.NewAPIHandler(expenseService, categoryService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// HTML templates
	templates, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public pages
	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)

	// Pages that require a session
	pages := router.Group("/")
	pages.Use(middleware.RequireAuth())
	pages.GET("", expenseHandler.Dashboard)
	pages.GET("/add_expense", expenseHandler.ShowAddExpense)
	pages.POST("/add_expense", expenseHandler.AddExpense)
	pages.GET("/edit_expense/:id", expenseHandler.ShowEditExpense)
	pages.POST("/edit_expense/:id", expenseHandler.EditExpense)
	pages.GET("/delete_expense/:id", expenseHandler.DeleteExpense)
	pages.GET("/reports", expenseHandler.Reports)
	pages.GET("/logout", authHandler.ShowLogout)
	pages.POST("/logout", authHandler.Logout)

	// JSON API
	api := router.Group("/api")
	api.GET("/categories", apiHandler.ListCategories)

	apiAuth := api.Group("/")
	apiAuth.Use(middleware.RequireAuthAPI())
	apiAuth.GET("/expenses", apiHandler.ListExpenses)
	apiAuth.GET("/expenses/category/:id", apiHandler.ExpensesByCategory)
	apiAuth.GET("/stats", apiHandler.Stats)

	log.Infof("Starting Spendwise server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
