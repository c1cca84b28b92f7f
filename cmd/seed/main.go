package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bxcodec/faker/v3"

	"agorot/internal/config"
	"agorot/internal/database"
	"agorot/internal/logger"
	"agorot/internal/models"
	"agorot/internal/services"
)

// Seeds a demo user with a few months of plausible activity. Intended for
// local development and demos, never for production databases.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

var merchants = []struct {
	name      string
	txType    models.TransactionType
	minAgorot int64
	maxAgorot int64
}{
	{"שופרסל", models.TransactionTypeExpense, 8_000, 45_000},
	{"רמי לוי", models.TransactionTypeExpense, 10_000, 60_000},
	{"פז", models.TransactionTypeExpense, 20_000, 35_000},
	{"סופר-פארם", models.TransactionTypeExpense, 3_000, 20_000},
	{"רב-קו", models.TransactionTypeExpense, 1_500, 21_300},
	{"קפה ארומה", models.TransactionTypeExpense, 1_200, 6_500},
	{"חברת החשמל", models.TransactionTypeExpense, 25_000, 60_000},
}

func run() error {
	log := logger.Get()

	email := flag.String("email", "", "email for the demo user (random when empty)")
	password := flag.String("password", "demo1234", "password for the demo user")
	months := flag.Int("months", 3, "months of transaction history to generate")
	flag.Parse()

	if _, err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	gamificationService := services.NewGamificationService(db)
	transactionService := services.NewTransactionService(db, gamificationService)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	recurringService := services.NewRecurringService(db)
	maaserService := services.NewMaaserService(db, 10)
	institutionalService := services.NewInstitutionalService(db)

	userEmail := *email
	if userEmail == "" {
		userEmail = faker.Email()
	}
	user, err := userService.CreateUser(userEmail, *password, faker.FirstName(), faker.LastName())
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}
	log.Infof("Created demo user %s (id=%d)", user.Email, user.ID)

	foodCategory, err := categoryService.CreateCategory(user.ID, "אוכל בחוץ", "Eating Out", models.CategoryTypeExpense, "coffee", nil)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	salaryCategory, err := categoryService.CreateCategory(user.ID, "משכורת", "Salary", models.CategoryTypeIncome, "banknote", nil)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()
	created := 0

	for m := 0; m < *months; m++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 9, 0, 0, 0, time.Local).AddDate(0, -m, 0)

		// Monthly salary, maaser relevant.
		salary := int64(1_200_000 + rng.Intn(100_000))
		if _, err := transactionService.CreateTransaction(user.ID, &salaryCategory.ID,
			models.TransactionTypeIncome, salary, "משכורת חודשית", "", monthStart, true, true, nil); err != nil {
			return fmt.Errorf("failed to create salary transaction: %w", err)
		}
		created++

		// A spread of expenses across the month. Left uncategorized so the
		// auto-categorizer has something to work with.
		count := 15 + rng.Intn(10)
		for i := 0; i < count; i++ {
			merchant := merchants[rng.Intn(len(merchants))]
			amount := merchant.minAgorot + rng.Int63n(merchant.maxAgorot-merchant.minAgorot)
			date := monthStart.AddDate(0, 0, rng.Intn(28)).Add(time.Duration(rng.Intn(14)) * time.Hour)
			if date.After(now) {
				continue
			}
			if _, err := transactionService.CreateTransaction(user.ID, nil,
				merchant.txType, amount, merchant.name, merchant.name, date, false, false, nil); err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}
			created++
		}
	}
	log.Infof("Created %d transactions", created)

	if _, err := budgetService.CreateBudget(user.ID, foodCategory.ID, "אוכל בחוץ", 80_000,
		models.BudgetPeriodMonthly, 80, now.AddDate(0, -*months, 0), nil); err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	targetDate := now.AddDate(1, 0, 0)
	goal, err := goalService.CreateGoal(user.ID, "חופשה משפחתית", 1_500_000, &targetDate)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	if _, err := goalService.AddContribution(user.ID, goal.ID, 25_000, now.AddDate(0, 0, -14), "הפקדה ראשונה"); err != nil {
		return fmt.Errorf("failed to add contribution: %w", err)
	}

	if _, err := recurringService.CreateRule(user.ID, nil, "שכר דירה", 450_000,
		models.TransactionTypeExpense, models.FrequencyMonthly, now.AddDate(0, 1, 0), nil); err != nil {
		return fmt.Errorf("failed to create recurring rule: %w", err)
	}

	if _, err := maaserService.RecordPayment(user.ID, 120_000, now.AddDate(0, 0, -7),
		"קופת צדקה", models.MaaserRecipientTzedaka, "מעשר חודשי"); err != nil {
		return fmt.Errorf("failed to record maaser payment: %w", err)
	}

	if _, err := institutionalService.CreateAccount(user.ID, "מנורה מבטחים",
		models.InstitutionalTypePension, "12345678", 24_500_000, "קרן פנסיה ממקום העבודה"); err != nil {
		return fmt.Errorf("failed to create institutional account: %w", err)
	}

	log.Infof("Seeding complete. Login with %s / %s", user.Email, *password)
	return nil
}
