package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
)

// maaserService handles maaser (tithe) business logic.
type maaserService struct {
	db          *gorm.DB
	ratePercent int64
}

// NewMaaserService creates a new MaaserServicer with the given tithe rate.
func NewMaaserService(db *gorm.DB, ratePercent int64) MaaserServicer {
	if ratePercent <= 0 {
		ratePercent = 10
	}
	return &maaserService{db: db, ratePercent: ratePercent}
}

// RecordPayment records a maaser payment.
func (s *maaserService) RecordPayment(
	userID uint,
	amount int64,
	paymentDate time.Time,
	recipient string,
	recipientType models.MaaserRecipientType,
	description string,
) (*models.MaaserPayment, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if recipient == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recipient is required")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	if recipientType == "" {
		recipientType = models.MaaserRecipientTzedaka
	}

	payment := &models.MaaserPayment{
		UserID:        userID,
		Amount:        amount,
		PaymentDate:   paymentDate,
		Recipient:     recipient,
		RecipientType: recipientType,
		Description:   description,
	}

	if err := s.db.Create(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return payment, nil
}

// ListPayments returns a paginated list of the user's maaser payments, newest first.
func (s *maaserService) ListPayments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.MaaserPayment], error) {
	page.Defaults()

	base := s.db.Model(&models.MaaserPayment{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.MaaserPayment
	if err := base.Scopes(pagination.Paginate(page)).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeletePayment soft-deletes a maaser payment.
func (s *maaserService) DeletePayment(userID, paymentID uint) error {
	var payment models.MaaserPayment
	if err := s.db.Where("id = ? AND user_id = ?", paymentID, userID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMaaserPaymentNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&payment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MonthlySummary computes the user's tithe position for the current month.
// Due is rate percent of the month's maaser-relevant income, rounded to the
// nearest agora.
func (s *maaserService) MonthlySummary(userID uint) (*MaaserSummary, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var monthIncome int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND is_maaser_relevant = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeIncome, true, monthStart, monthEnd).
		Scan(&monthIncome).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	due := decimal.NewFromInt(monthIncome).
		Mul(decimal.NewFromInt(s.ratePercent)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()

	var paidThisMonth int64
	err = s.db.Model(&models.MaaserPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND payment_date >= ? AND payment_date < ?", userID, monthStart, monthEnd).
		Scan(&paidThisMonth).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var paidAllTime int64
	err = s.db.Model(&models.MaaserPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&paidAllTime).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &MaaserSummary{
		RatePercent:   s.ratePercent,
		MonthIncome:   monthIncome,
		Due:           due,
		PaidThisMonth: paidThisMonth,
		Balance:       due - paidThisMonth,
		PaidAllTime:   paidAllTime,
	}, nil
}
