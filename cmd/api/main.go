package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agorot/internal/banking"
	"agorot/internal/config"
	"agorot/internal/database"
	"agorot/internal/handlers"
	"agorot/internal/logger"
	"agorot/internal/middleware"
	"agorot/internal/services"
	"agorot/internal/validator"

	_ "agorot/internal/docs" // Import swagger docs
)

// @title           Agorot API
// @version         1.0
// @description     Agorot is a personal and family finance tracker: transactions in agorot, budgets, savings goals, maaser tithe tracking, open-banking sync, and spending insights.
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

	// Register custom request validators
	validator.Register()

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

	// Open-banking aggregator client
	pepperClient := banking.NewClient(banking.Config{
		BaseURL:      appConfig.PepperBaseURL,
		ClientID:     appConfig.PepperClientID,
		ClientSecret: appConfig.PepperClientSecret,
		RedirectURI:  appConfig.PepperRedirectURI,
	})

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	gamificationService := services.NewGamificationService(db)
	transactionService := services.NewTransactionService(db, gamificationService)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	recurringService := services.NewRecurringService(db)
	maaserService := services.NewMaaserService(db, appConfig.MaaserRatePercent)
	institutionalService := services.NewInstitutionalService(db)
	bankingService := services.NewBankingService(db, pepperClient)
	categorizerService := services.NewCategorizerService(db)
	predictionService := services.NewPredictionService(db)
	notificationService := services.NewNotificationService(db, predictionService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	recurringHandler := handlers.NewRecurringHandler(recurringService, auditService)
	maaserHandler := handlers.NewMaaserHandler(maaserService, auditService)
	institutionalHandler := handlers.NewInstitutionalHandler(institutionalService, auditService)
	bankingHandler := handlers.NewBankingHandler(bankingService, auditService)
	insightsHandler := handlers.NewInsightsHandler(categorizerService, predictionService, auditService)
	gamificationHandler := handlers.NewGamificationHandler(gamificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

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

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// The aggregator redirects the browser here after consent.
	v1.GET("/banking/callback", bankingHandler.HandleCallback)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PUT("/:id/category", transactionHandler.SetCategory)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	// Savings goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/contributions", goalHandler.AddContribution)

	// Recurring rule routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRule)
	recurring.GET("", recurringHandler.GetRules)
	recurring.GET("/upcoming", recurringHandler.GetUpcoming)
	recurring.GET("/:id", recurringHandler.GetRule)
	recurring.PUT("/:id", recurringHandler.UpdateRule)
	recurring.DELETE("/:id", recurringHandler.DeleteRule)

	// Maaser routes
	maaser := protected.Group("/maaser")
	maaser.POST("/payments", maaserHandler.RecordPayment)
	maaser.GET("/payments", maaserHandler.ListPayments)
	maaser.DELETE("/payments/:id", maaserHandler.DeletePayment)
	maaser.GET("/summary", maaserHandler.GetSummary)

	// Institutional account routes
	institutional := protected.Group("/institutional")
	institutional.POST("", institutionalHandler.CreateAccount)
	institutional.GET("", institutionalHandler.GetAccounts)
	institutional.GET("/:id", institutionalHandler.GetAccount)
	institutional.PUT("/:id/balance", institutionalHandler.UpdateBalance)
	institutional.DELETE("/:id", institutionalHandler.DeleteAccount)

	// Open-banking routes
	bankConnections := protected.Group("/banking/connections")
	bankConnections.POST("", bankingHandler.InitConnection)
	bankConnections.GET("", bankingHandler.ListConnections)
	bankConnections.POST("/:id/refresh", bankingHandler.RefreshConnection)
	bankConnections.DELETE("/:id", bankingHandler.Disconnect)
	bankConnections.POST("/:id/sync", bankingHandler.RunSync)
	bankConnections.GET("/:id/history", bankingHandler.ListSyncHistory)

	// Insights routes
	insights := protected.Group("/insights")
	insights.POST("/categorize", insightsHandler.Categorize)
	insights.POST("/auto-categorize", insightsHandler.AutoCategorize)
	insights.GET("/prediction", insightsHandler.GetPrediction)

	// Gamification routes
	gamification := protected.Group("/gamification")
	gamification.GET("/summary", gamificationHandler.GetSummary)
	gamification.POST("/check", gamificationHandler.CheckAchievements)
	gamification.GET("/catalog", gamificationHandler.GetCatalog)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.POST("/check", notificationHandler.CheckNotifications)
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	log.Infof("Starting Agorot backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
