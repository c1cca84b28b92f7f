package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"agorot/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a user-owned category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("קטגוריה %d", nextID()), categoryType)
}

// CreateTestCategoryNamed creates a user-owned category with a specific Hebrew name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID uint, nameHe string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		NameHe: nameHe,
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSystemCategory creates a shared system category.
func CreateTestSystemCategory(t *testing.T, db *gorm.DB, nameHe string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		NameHe:   nameHe,
		Type:     categoryType,
		IsSystem: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test system category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and amount (in agorot).
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: amount,
		Date:   time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestCategorizedTransaction creates an expense with a category, merchant, and date.
func CreateTestCategorizedTransaction(t *testing.T, db *gorm.DB, userID, categoryID uint, amount int64, merchant string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:       userID,
		CategoryID:   &categoryID,
		Type:         models.TransactionTypeExpense,
		Amount:       amount,
		MerchantName: merchant,
		Date:         date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test categorized transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active monthly budget for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID uint, amount int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:         userID,
		CategoryID:     categoryID,
		Name:           fmt.Sprintf("Test Budget %d", nextID()),
		Amount:         amount,
		Period:         models.BudgetPeriodMonthly,
		AlertThreshold: 80,
		StartDate:      time.Now().Truncate(24 * time.Hour),
		IsActive:       true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates an active savings goal with the given target and
// current amounts (in agorot).
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint, targetAmount, currentAmount int64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  targetAmount,
		CurrentAmount: currentAmount,
		IsActive:      true,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestRecurringRule creates an active monthly expense rule due at nextDate.
func CreateTestRecurringRule(t *testing.T, db *gorm.DB, userID uint, amount int64, nextDate time.Time) *models.RecurringRule {
	t.Helper()

	rule := &models.RecurringRule{
		UserID:      userID,
		Description: fmt.Sprintf("Test Bill %d", nextID()),
		Amount:      amount,
		Type:        models.TransactionTypeExpense,
		Frequency:   models.FrequencyMonthly,
		NextDate:    nextDate,
		IsActive:    true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring rule: %v", err)
	}
	return rule
}

// CreateTestMaaserPayment creates a maaser payment on the given date.
func CreateTestMaaserPayment(t *testing.T, db *gorm.DB, userID uint, amount int64, date time.Time) *models.MaaserPayment {
	t.Helper()

	payment := &models.MaaserPayment{
		UserID:        userID,
		Amount:        amount,
		PaymentDate:   date,
		Recipient:     fmt.Sprintf("Test Recipient %d", nextID()),
		RecipientType: models.MaaserRecipientTzedaka,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test maaser payment: %v", err)
	}
	return payment
}

// CreateTestGamification seeds a gamification row with the given streak and
// last activity date.
func CreateTestGamification(t *testing.T, db *gorm.DB, userID uint, streak int, lastActivity *time.Time) *models.UserGamification {
	t.Helper()

	state := &models.UserGamification{
		UserID:           userID,
		CurrentStreak:    streak,
		LongestStreak:    streak,
		LastActivityDate: lastActivity,
	}
	if err := db.Create(state).Error; err != nil {
		t.Fatalf("failed to create test gamification state: %v", err)
	}
	return state
}

// CreateTestConnection creates an open-banking connection in the given status.
func CreateTestConnection(t *testing.T, db *gorm.DB, userID uint, status models.ConnectionStatus) *models.OpenBankingConnection {
	t.Helper()

	connection := &models.OpenBankingConnection{
		UserID:       userID,
		ProviderCode: "PEPPER",
		Status:       status,
	}
	if status == models.ConnectionActive {
		connection.AccessToken = "test-access-token"
		connection.RefreshToken = "test-refresh-token"
	}
	if err := db.Create(connection).Error; err != nil {
		t.Fatalf("failed to create test connection: %v", err)
	}
	return connection
}
