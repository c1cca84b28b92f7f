package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
)

// recurringService handles recurring-rule business logic.
type recurringService struct {
	db *gorm.DB
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRule creates a new recurring rule.
func (s *recurringService) CreateRule(
	userID uint,
	categoryID *uint,
	description string,
	amount int64,
	transactionType models.TransactionType,
	frequency models.RecurringFrequency,
	nextDate time.Time,
	endDate *time.Time,
) (*models.RecurringRule, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if nextDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next date is required")
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND (user_id = ? OR is_system = ?)", *categoryID, userID, true).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	rule := &models.RecurringRule{
		UserID:      userID,
		CategoryID:  categoryID,
		Description: description,
		Amount:      amount,
		Type:        transactionType,
		Frequency:   frequency,
		NextDate:    nextDate,
		EndDate:     endDate,
		IsActive:    true,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return rule, nil
}

// GetUserRules returns a paginated list of the user's recurring rules.
func (s *recurringService) GetUserRules(userID uint, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.RecurringRule], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringRule{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringRule
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("next_date ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRuleByID returns a recurring rule by ID if it belongs to the user.
func (s *recurringService) GetRuleByID(userID, ruleID uint) (*models.RecurringRule, error) {
	var rule models.RecurringRule
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRule updates an existing recurring rule's fields.
func (s *recurringService) UpdateRule(
	userID, ruleID uint,
	description string,
	amount *int64,
	frequency *models.RecurringFrequency,
	nextDate, endDate *time.Time,
	isActive *bool,
) (*models.RecurringRule, error) {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if description != "" {
		updates["description"] = description
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if frequency != nil {
		updates["frequency"] = *frequency
	}
	if nextDate != nil {
		updates["next_date"] = *nextDate
	}
	if endDate != nil {
		updates["end_date"] = endDate
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(rule).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return rule, nil
}

// DeleteRule soft-deletes a recurring rule.
func (s *recurringService) DeleteRule(userID, ruleID uint) error {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUpcoming returns active rules whose next occurrence falls within the
// given number of days from now, soonest first.
func (s *recurringService) GetUpcoming(userID uint, withinDays int) ([]models.RecurringRule, error) {
	if withinDays <= 0 {
		withinDays = 7
	}

	now := time.Now()
	horizon := now.AddDate(0, 0, withinDays)

	var rules []models.RecurringRule
	err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ? AND next_date <= ?", userID, true, horizon).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("next_date ASC").
		Find(&rules).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}
