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

	"agorot/internal/banking"
	"agorot/internal/handlers"
	"agorot/internal/logger"
	"agorot/internal/middleware"
	"agorot/internal/models"
	"agorot/internal/services"
	"agorot/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine

	// Pepper is the stubbed aggregator the banking service talks to.
	Pepper *pepperStub
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// pepperStub fakes the aggregator's token endpoint.
type pepperStub struct {
	Server *httptest.Server

	// FailExchange makes every token call return 500.
	FailExchange bool
	// ExchangeCalls counts token endpoint hits.
	ExchangeCalls atomic.Int64
}

func newPepperStub(t *testing.T) *pepperStub {
	t.Helper()
	stub := &pepperStub{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		stub.ExchangeCalls.Add(1)
		if stub.FailExchange {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"at-%d","refresh_token":"rt-%d","expires_in":3600}`,
			stub.ExchangeCalls.Load(), stub.ExchangeCalls.Load())
	}))
	t.Cleanup(stub.Server.Close)
	return stub
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
		&models.SavingsGoal{},
		&models.GoalContribution{},
		&models.RecurringRule{},
		&models.MaaserPayment{},
		&models.InstitutionalAccount{},
		&models.UserGamification{},
		&models.UserAchievement{},
		&models.Notification{},
		&models.OpenBankingConnection{},
		&models.SyncHistory{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite
// and a stubbed aggregator.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	pepper := newPepperStub(t)
	pepperClient := banking.NewClient(banking.Config{
		BaseURL:      pepper.Server.URL,
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURI:  "http://localhost/callback",
	})

	// Services
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	gamificationService := services.NewGamificationService(db)
	transactionService := services.NewTransactionService(db, gamificationService)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	recurringService := services.NewRecurringService(db)
	maaserService := services.NewMaaserService(db, 10)
	institutionalService := services.NewInstitutionalService(db)
	bankingService := services.NewBankingService(db, pepperClient)
	categorizerService := services.NewCategorizerService(db)
	predictionService := services.NewPredictionService(db)
	notificationService := services.NewNotificationService(db, predictionService)

	// Handlers
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

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	v1.GET("/banking/callback", bankingHandler.HandleCallback)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PUT("/:id/category", transactionHandler.SetCategory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/contributions", goalHandler.AddContribution)

	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRule)
	recurring.GET("", recurringHandler.GetRules)
	recurring.GET("/upcoming", recurringHandler.GetUpcoming)
	recurring.GET("/:id", recurringHandler.GetRule)
	recurring.PUT("/:id", recurringHandler.UpdateRule)
	recurring.DELETE("/:id", recurringHandler.DeleteRule)

	maaser := protected.Group("/maaser")
	maaser.POST("/payments", maaserHandler.RecordPayment)
	maaser.GET("/payments", maaserHandler.ListPayments)
	maaser.DELETE("/payments/:id", maaserHandler.DeletePayment)
	maaser.GET("/summary", maaserHandler.GetSummary)

	institutional := protected.Group("/institutional")
	institutional.POST("", institutionalHandler.CreateAccount)
	institutional.GET("", institutionalHandler.GetAccounts)
	institutional.GET("/:id", institutionalHandler.GetAccount)
	institutional.PUT("/:id/balance", institutionalHandler.UpdateBalance)
	institutional.DELETE("/:id", institutionalHandler.DeleteAccount)

	bankConnections := protected.Group("/banking/connections")
	bankConnections.POST("", bankingHandler.InitConnection)
	bankConnections.GET("", bankingHandler.ListConnections)
	bankConnections.POST("/:id/refresh", bankingHandler.RefreshConnection)
	bankConnections.DELETE("/:id", bankingHandler.Disconnect)
	bankConnections.POST("/:id/sync", bankingHandler.RunSync)
	bankConnections.GET("/:id/history", bankingHandler.ListSyncHistory)

	insights := protected.Group("/insights")
	insights.POST("/categorize", insightsHandler.Categorize)
	insights.POST("/auto-categorize", insightsHandler.AutoCategorize)
	insights.GET("/prediction", insightsHandler.GetPrediction)

	gamification := protected.Group("/gamification")
	gamification.GET("/summary", gamificationHandler.GetSummary)
	gamification.POST("/check", gamificationHandler.CheckAchievements)
	gamification.GET("/catalog", gamificationHandler.GetCatalog)

	notifications := protected.Group("/notifications")
	notifications.POST("/check", notificationHandler.CheckNotifications)
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	return &testApp{DB: db, Router: router, Pepper: pepper}
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

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// seedSystemCategories inserts the shared categories the migrations would seed.
func (app *testApp) seedSystemCategories(t *testing.T) {
	t.Helper()
	for _, name := range services.SystemCategoryNames() {
		category := models.Category{
			NameHe:   name,
			Type:     models.CategoryTypeExpense,
			IsSystem: true,
		}
		if err := app.DB.Create(&category).Error; err != nil {
			t.Fatalf("failed to seed system category %q: %v", name, err)
		}
	}
}
