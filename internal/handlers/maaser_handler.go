package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
	"agorot/internal/services"
)

// MaaserHandler handles maaser (tithe) requests
type MaaserHandler struct {
	maaserService services.MaaserServicer
	auditService  services.AuditServicer
}

// NewMaaserHandler creates a new MaaserHandler
func NewMaaserHandler(maaserService services.MaaserServicer, auditService services.AuditServicer) *MaaserHandler {
	return &MaaserHandler{maaserService: maaserService, auditService: auditService}
}

// RecordMaaserRequest represents the maaser payment request payload
type RecordMaaserRequest struct {
	Amount        int64      `json:"amount" binding:"required,gt=0"`
	PaymentDate   *time.Time `json:"payment_date"`
	Recipient     string     `json:"recipient" binding:"required,max=255"`
	RecipientType string     `json:"recipient_type" binding:"omitempty,recipient_type"`
	Description   string     `json:"description" binding:"max=500"`
}

// RecordPayment records a maaser payment
// @Summary     Record a maaser payment
// @Description Record a tithe payment against the user's maaser obligation
// @Tags        maaser
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecordMaaserRequest true "Payment data"
// @Success     201 {object} models.MaaserPayment "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /maaser/payments [post]
func (h *MaaserHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordMaaserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment, err := h.maaserService.RecordPayment(
		userID, req.Amount, paymentDate, req.Recipient,
		models.MaaserRecipientType(req.RecipientType), req.Description,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECORD_MAASER", "maaser_payment", payment.ID, c.ClientIP(), map[string]interface{}{
		"amount": payment.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// ListPayments lists the user's maaser payments
// @Summary     List maaser payments
// @Description Get the user's maaser payments, newest first
// @Tags        maaser
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.MaaserPayment] "Paginated payments"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /maaser/payments [get]
func (h *MaaserHandler) ListPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.maaserService.ListPayments(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeletePayment deletes a maaser payment
// @Summary     Delete a maaser payment
// @Description Delete one of the user's maaser payments
// @Tags        maaser
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Payment ID"
// @Success     200 {object} MessageResponse "Payment deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /maaser/payments/{id} [delete]
func (h *MaaserHandler) DeletePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	paymentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.maaserService.DeletePayment(userID, paymentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_MAASER", "maaser_payment", paymentID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Maaser payment deleted successfully"})
}

// GetSummary returns the user's maaser position for the current month
// @Summary     Get maaser summary
// @Description Get due, paid, and balance for the current month plus the all-time total
// @Tags        maaser
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.MaaserSummary "Maaser summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /maaser/summary [get]
func (h *MaaserHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.maaserService.MonthlySummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
