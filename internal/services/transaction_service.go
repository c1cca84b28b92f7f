package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "agorot/internal/errors"
	"agorot/internal/logger"
	"agorot/internal/models"
	"agorot/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db           *gorm.DB
	gamification GamificationServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, gamification GamificationServicer) TransactionServicer {
	return &transactionService{
		db:           db,
		gamification: gamification,
	}
}

// CreateTransaction creates a new transaction for a user
func (s *transactionService) CreateTransaction(
	userID uint,
	categoryID *uint,
	transactionType models.TransactionType,
	amount int64,
	description, merchantName string,
	date time.Time,
	isMaaserRelevant, isRecurring bool,
	tags []string,
) (*models.Transaction, error) {
	// Validate input
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	// Default date to now if not provided
	if date.IsZero() {
		date = time.Now()
	}

	if categoryID != nil {
		if err := s.validateCategory(userID, *categoryID, transactionType); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:           userID,
		CategoryID:       categoryID,
		Type:             transactionType,
		Amount:           amount,
		Description:      description,
		MerchantName:     merchantName,
		Date:             date,
		IsMaaserRelevant: isMaaserRelevant,
		IsRecurring:      isRecurring,
		Tags:             tags,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Streak and day-type bookkeeping. A failure here never fails the write.
	if s.gamification != nil {
		if err := s.gamification.RecordActivity(userID, time.Now()); err != nil {
			logger.Get().Warnw("record activity failed", "user_id", userID, "error", err)
		}
	}

	return transaction, nil
}

// validateCategory ensures the category is visible to the user and its type
// matches the transaction's. Transfers carry no type constraint.
func (s *transactionService) validateCategory(userID, categoryID uint, transactionType models.TransactionType) error {
	var category models.Category
	if err := s.db.Where("id = ? AND (user_id = ? OR is_system = ?)", categoryID, userID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transactionType != models.TransactionTypeTransfer && string(category.Type) != string(transactionType) {
		return apperrors.ErrCategoryTypeMismatch
	}
	return nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Text != "" {
		pattern := "%" + f.Text + "%"
		q = q.Where("description LIKE ? OR merchant_name LIKE ?", pattern, pattern)
	}
	if f.Tag != "" {
		q = q.Where("tags LIKE ?", "%\""+f.Tag+"\"%")
	}
	if f.MaaserOnly {
		q = q.Where("is_maaser_relevant = ?", true)
	}
	if f.Uncategorized {
		q = q.Where("category_id IS NULL")
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction updates mutable fields of an existing transaction.
func (s *transactionService) UpdateTransaction(
	userID, transactionID uint,
	categoryID *uint,
	amount *int64,
	description *string,
	isMaaserRelevant *bool,
	tags []string,
) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		if err := s.validateCategory(userID, *categoryID, transaction.Type); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if description != nil {
		updates["description"] = *description
	}
	if isMaaserRelevant != nil {
		updates["is_maaser_relevant"] = *isMaaserRelevant
	}
	if tags != nil {
		transaction.Tags = tags
		if err := s.db.Model(transaction).Update("tags", tags).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetCategory assigns a category to a transaction.
func (s *transactionService) SetCategory(userID, transactionID, categoryID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.validateCategory(userID, categoryID, transaction.Type); err != nil {
		return err
	}

	if err := s.db.Model(transaction).Update("category_id", categoryID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
