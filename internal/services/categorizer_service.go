package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "agorot/internal/errors"
	"agorot/internal/logger"
	"agorot/internal/models"
)

// Confidence scores per categorization stage.
const (
	confidenceHistorical = 0.95
	confidenceRules      = 0.85
	confidencePattern    = 0.70

	// autoCategorizeFloor is the minimum confidence at which a result is
	// persisted during bulk categorization.
	autoCategorizeFloor = 0.7

	// autoCategorizeBatch bounds how many transactions one bulk run touches.
	autoCategorizeBatch = 100
)

// categorizerService implements the three-stage categorizer: history first,
// then the keyword rule catalog, then amount-pattern matching.
type categorizerService struct {
	db *gorm.DB
}

// NewCategorizerService creates a new CategorizerServicer.
func NewCategorizerService(db *gorm.DB) CategorizerServicer {
	return &categorizerService{db: db}
}

// Categorize runs the stages in priority order and returns the first match,
// or nil when every stage comes up empty.
func (s *categorizerService) Categorize(userID uint, description, merchantName string, amount int64) (*CategorizeResult, error) {
	text := merchantName
	if text == "" {
		text = description
	}

	if text != "" {
		categoryID, err := s.findHistoricalCategory(userID, text)
		if err != nil {
			return nil, err
		}
		if categoryID != 0 {
			return &CategorizeResult{CategoryID: categoryID, Confidence: confidenceHistorical, Method: MethodHistorical}, nil
		}

		categoryID, err = s.findCategoryByRules(userID, text)
		if err != nil {
			return nil, err
		}
		if categoryID != 0 {
			return &CategorizeResult{CategoryID: categoryID, Confidence: confidenceRules, Method: MethodRules}, nil
		}
	}

	categoryID, err := s.findCategoryByPattern(userID, amount)
	if err != nil {
		return nil, err
	}
	if categoryID != 0 {
		return &CategorizeResult{CategoryID: categoryID, Confidence: confidencePattern, Method: MethodPattern}, nil
	}

	return nil, nil
}

// findHistoricalCategory looks for the merchant text in the user's already
// categorized transactions and returns the plurality category among the ten
// most recent matches.
func (s *categorizerService) findHistoricalCategory(userID uint, text string) (uint, error) {
	pattern := "%" + text + "%"

	var similar []models.Transaction
	err := s.db.Select("category_id").
		Where("user_id = ? AND category_id IS NOT NULL", userID).
		Where("LOWER(merchant_name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern).
		Order("date DESC").
		Limit(10).
		Find(&similar).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(similar) == 0 {
		return 0, nil
	}

	counts := make(map[uint]int)
	for _, t := range similar {
		if t.CategoryID != nil {
			counts[*t.CategoryID]++
		}
	}

	var best uint
	var bestCount int
	for id, count := range counts {
		if count > bestCount {
			best, bestCount = id, count
		}
	}
	return best, nil
}

// findCategoryByRules matches the keyword catalog and resolves the canonical
// category name against the user's categories, falling back to the system
// set. An unresolvable name falls through to the next stage.
func (s *categorizerService) findCategoryByRules(userID uint, text string) (uint, error) {
	rule := matchCategoryRule(text)
	if rule == nil {
		return 0, nil
	}

	var category models.Category
	err := s.db.Where("name_he = ? AND (user_id = ? OR is_system = ?)", rule.CategoryName, userID, true).
		Order("is_system ASC").
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Get().Debugw("rule category not resolvable", "user_id", userID, "category", rule.CategoryName)
			return 0, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category.ID, nil
}

// findCategoryByPattern matches on amount alone: categorized transactions
// within a 20 percent band around the amount, most recent first.
func (s *categorizerService) findCategoryByPattern(userID uint, amount int64) (uint, error) {
	if amount <= 0 {
		return 0, nil
	}

	low := int64(float64(amount) * 0.8)
	high := int64(float64(amount) * 1.2)

	var similar []models.Transaction
	err := s.db.Select("category_id").
		Where("user_id = ? AND category_id IS NOT NULL AND amount >= ? AND amount <= ?", userID, low, high).
		Order("date DESC").
		Limit(5).
		Find(&similar).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, t := range similar {
		if t.CategoryID != nil {
			return *t.CategoryID, nil
		}
	}
	return 0, nil
}

// AutoCategorizeAll categorizes up to autoCategorizeBatch uncategorized
// transactions and persists results above the confidence floor. Each
// transaction is handled independently so one failure cannot poison the run.
func (s *categorizerService) AutoCategorizeAll(userID uint) (int, error) {
	var uncategorized []models.Transaction
	err := s.db.Where("user_id = ? AND category_id IS NULL", userID).
		Order("date DESC").
		Limit(autoCategorizeBatch).
		Find(&uncategorized).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categorized := 0
	for _, transaction := range uncategorized {
		result, err := s.Categorize(userID, transaction.Description, transaction.MerchantName, transaction.Amount)
		if err != nil {
			logger.Get().Warnw("auto-categorize failed", "transaction_id", transaction.ID, "error", err)
			continue
		}
		if result == nil || result.Confidence <= autoCategorizeFloor {
			continue
		}

		if err := s.db.Model(&models.Transaction{}).
			Where("id = ?", transaction.ID).
			Update("category_id", result.CategoryID).Error; err != nil {
			logger.Get().Warnw("auto-categorize update failed", "transaction_id", transaction.ID, "error", err)
			continue
		}
		categorized++
	}

	return categorized, nil
}
