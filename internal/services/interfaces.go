package services

import (
	"context"
	"time"

	"agorot/internal/models"
	"agorot/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, nameHe, nameEn string, categoryType models.CategoryType, icon string, parentID *uint) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetUserCategoriesByType(userID uint, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, nameHe, nameEn, icon string, parentID *uint) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Type          *models.TransactionType
	CategoryID    *uint
	MinAmount     *int64
	MaxAmount     *int64
	Text          string
	Tag           string
	MaaserOnly    bool
	Uncategorized bool
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, categoryID *uint, transactionType models.TransactionType, amount int64, description, merchantName string, date time.Time, isMaaserRelevant, isRecurring bool, tags []string) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, categoryID *uint, amount *int64, description *string, isMaaserRelevant *bool, tags []string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	SetCategory(userID, transactionID, categoryID uint) error
}

// BudgetProgress contains spending vs budget data for a budget's current period.
type BudgetProgress struct {
	BudgetID   uint    `json:"budget_id"`
	Budgeted   int64   `json:"budgeted"`
	Spent      int64   `json:"spent"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID uint, name string, amount int64, period models.BudgetPeriod, alertThreshold int, startDate time.Time, endDate *time.Time) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, name string, amount *int64, period *models.BudgetPeriod, alertThreshold *int, endDate *time.Time) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetBudgetProgress(userID, budgetID uint) (*BudgetProgress, error)
}

// GoalServicer defines the contract for savings-goal business logic.
type GoalServicer interface {
	CreateGoal(userID uint, name string, targetAmount int64, targetDate *time.Time) (*models.SavingsGoal, error)
	GetUserGoals(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.SavingsGoal], error)
	GetGoalByID(userID, goalID uint) (*models.SavingsGoal, error)
	UpdateGoal(userID, goalID uint, name string, targetAmount *int64, targetDate *time.Time, isActive *bool) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID uint) error
	AddContribution(userID, goalID uint, amount int64, date time.Time, note string) (*models.SavingsGoal, error)
}

// RecurringServicer defines the contract for recurring-rule business logic.
type RecurringServicer interface {
	CreateRule(userID uint, categoryID *uint, description string, amount int64, transactionType models.TransactionType, frequency models.RecurringFrequency, nextDate time.Time, endDate *time.Time) (*models.RecurringRule, error)
	GetUserRules(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.RecurringRule], error)
	GetRuleByID(userID, ruleID uint) (*models.RecurringRule, error)
	UpdateRule(userID, ruleID uint, description string, amount *int64, frequency *models.RecurringFrequency, nextDate, endDate *time.Time, isActive *bool) (*models.RecurringRule, error)
	DeleteRule(userID, ruleID uint) error
	GetUpcoming(userID uint, withinDays int) ([]models.RecurringRule, error)
}

// MaaserSummary aggregates a user's tithe position for the current month.
type MaaserSummary struct {
	RatePercent   int64 `json:"rate_percent"`
	MonthIncome   int64 `json:"month_income"`
	Due           int64 `json:"due"`
	PaidThisMonth int64 `json:"paid_this_month"`
	Balance       int64 `json:"balance"`
	PaidAllTime   int64 `json:"paid_all_time"`
}

// MaaserServicer defines the contract for maaser (tithe) business logic.
type MaaserServicer interface {
	RecordPayment(userID uint, amount int64, paymentDate time.Time, recipient string, recipientType models.MaaserRecipientType, description string) (*models.MaaserPayment, error)
	ListPayments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MaaserPayment], error)
	DeletePayment(userID, paymentID uint) error
	MonthlySummary(userID uint) (*MaaserSummary, error)
}

// InstitutionalServicer defines the contract for institutional-account bookkeeping.
type InstitutionalServicer interface {
	CreateAccount(userID uint, provider string, accountType models.InstitutionalAccountType, accountNumber string, balance int64, notes string) (*models.InstitutionalAccount, error)
	GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.InstitutionalAccount], error)
	GetAccountByID(userID, accountID uint) (*models.InstitutionalAccount, error)
	UpdateBalance(userID, accountID uint, balance int64) (*models.InstitutionalAccount, error)
	DeleteAccount(userID, accountID uint) error
}

// BankingServicer defines the contract for open-banking connection management.
type BankingServicer interface {
	InitConnection(userID uint, providerCode string) (*models.OpenBankingConnection, error)
	HandleCallback(ctx context.Context, state, code string) (*models.OpenBankingConnection, error)
	RefreshConnection(ctx context.Context, userID, connectionID uint) (*models.OpenBankingConnection, error)
	ListConnections(userID uint) ([]models.OpenBankingConnection, error)
	Disconnect(userID, connectionID uint) error
	RunSync(ctx context.Context, userID, connectionID uint) (*models.SyncHistory, error)
	ListSyncHistory(userID, connectionID uint, limit int) ([]models.SyncHistory, error)
}

// CategorizeResult is the outcome of a single categorization attempt.
type CategorizeResult struct {
	CategoryID uint    `json:"category_id"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Categorization methods, in priority order.
const (
	MethodHistorical = "historical"
	MethodRules      = "rules"
	MethodPattern    = "pattern"
)

// CategorizerServicer defines the contract for the rule-based categorizer.
type CategorizerServicer interface {
	// Categorize returns nil (with nil error) when no stage matches.
	Categorize(userID uint, description, merchantName string, amount int64) (*CategorizeResult, error)
	// AutoCategorizeAll categorizes up to 100 uncategorized transactions and
	// persists confident results. Returns the number updated.
	AutoCategorizeAll(userID uint) (int, error)
}

// CategoryPrediction is next month's expected spend for one category.
type CategoryPrediction struct {
	Predicted  int64   `json:"predicted"`
	Confidence float64 `json:"confidence"`
	Trend      string  `json:"trend,omitempty"`
}

// Recommendation is a templated savings suggestion.
type Recommendation struct {
	Type             string `json:"type"`
	Category         string `json:"category,omitempty"`
	Message          string `json:"message"`
	PotentialSavings int64  `json:"potential_savings"`
}

// Prediction is the spend predictor's full output.
type Prediction struct {
	Total           int64                         `json:"total"`
	ByCategory      map[string]CategoryPrediction `json:"by_category"`
	UnusualExpenses []models.Transaction          `json:"unusual_expenses"`
	Recommendations []Recommendation              `json:"recommendations"`
}

// PredictionServicer defines the contract for the spend predictor.
type PredictionServicer interface {
	PredictNextMonth(userID uint) (*Prediction, error)
}

// UserStats is the snapshot achievement predicates are evaluated against.
type UserStats struct {
	TotalTransactions       int   `json:"total_transactions"`
	CategorizedTransactions int   `json:"categorized_transactions"`
	TotalBudgets            int   `json:"total_budgets"`
	TotalGoals              int   `json:"total_goals"`
	GoalsCompleted          int   `json:"goals_completed"`
	TotalSaved              int64 `json:"total_saved"`
	CurrentStreak           int   `json:"current_streak"`
	MonthsInBudget          int   `json:"months_in_budget"`
	MaaserPayments          int   `json:"maaser_payments"`
	MaaserMonths            int   `json:"maaser_months"`
	EarlyBirdDays           int   `json:"early_bird_days"`
	NightOwlDays            int   `json:"night_owl_days"`
	WeekendDays             int   `json:"weekend_days"`
	TotalPoints             int   `json:"total_points"`
}

// GamificationSummary is the full gamification view for a user.
type GamificationSummary struct {
	TotalPoints         int                      `json:"total_points"`
	Level               Level                    `json:"level"`
	ProgressToNextLevel float64                  `json:"progress_to_next_level"`
	State               models.UserGamification  `json:"state"`
	Earned              []models.UserAchievement `json:"earned"`
}

// GamificationServicer defines the contract for the gamification engine.
type GamificationServicer interface {
	CheckNewAchievements(userID uint) ([]Achievement, error)
	GetSummary(userID uint) (*GamificationSummary, error)
	TotalPoints(userID uint) (int, error)
	// RecordActivity updates streak and day-type counters for a user action
	// at the given time. Idempotent within a calendar day.
	RecordActivity(userID uint, at time.Time) error
}

// NotificationServicer defines the contract for the smart-notification engine.
type NotificationServicer interface {
	// CheckSmartNotifications runs all rule checks and returns the
	// notifications actually created this run (post de-duplication).
	CheckSmartNotifications(userID uint) ([]models.Notification, error)
	ListNotifications(userID uint, limit int) ([]models.Notification, error)
	MarkRead(userID, notificationID uint) error
	Delete(userID, notificationID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
