package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
)

// institutionalService handles institutional-account bookkeeping.
type institutionalService struct {
	db *gorm.DB
}

// NewInstitutionalService creates a new InstitutionalServicer.
func NewInstitutionalService(db *gorm.DB) InstitutionalServicer {
	return &institutionalService{db: db}
}

// CreateAccount registers a manually tracked institutional account.
func (s *institutionalService) CreateAccount(
	userID uint,
	provider string,
	accountType models.InstitutionalAccountType,
	accountNumber string,
	balance int64,
	notes string,
) (*models.InstitutionalAccount, error) {
	if provider == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "provider is required")
	}
	if balance < 0 {
		return nil, apperrors.ErrNegativeAmount
	}

	now := time.Now()
	account := &models.InstitutionalAccount{
		UserID:        userID,
		Provider:      provider,
		Type:          accountType,
		AccountNumber: accountNumber,
		Balance:       balance,
		LastUpdated:   &now,
		Notes:         notes,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts returns a paginated list of the user's institutional accounts.
func (s *institutionalService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.InstitutionalAccount], error) {
	page.Defaults()

	base := s.db.Model(&models.InstitutionalAccount{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.InstitutionalAccount
	if err := base.Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID returns an institutional account by ID if it belongs to the user.
func (s *institutionalService) GetAccountByID(userID, accountID uint) (*models.InstitutionalAccount, error) {
	var account models.InstitutionalAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstitutionalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateBalance sets a new balance and stamps the update time.
func (s *institutionalService) UpdateBalance(userID, accountID uint, balance int64) (*models.InstitutionalAccount, error) {
	if balance < 0 {
		return nil, apperrors.ErrNegativeAmount
	}

	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(account).Updates(map[string]interface{}{
		"balance":      balance,
		"last_updated": now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account.Balance = balance
	account.LastUpdated = &now
	return account, nil
}

// DeleteAccount soft-deletes an institutional account.
func (s *institutionalService) DeleteAccount(userID, accountID uint) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
