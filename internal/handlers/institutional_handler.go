package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
	"agorot/internal/services"
)

// InstitutionalHandler handles institutional-account requests
type InstitutionalHandler struct {
	institutionalService services.InstitutionalServicer
	auditService         services.AuditServicer
}

// NewInstitutionalHandler creates a new InstitutionalHandler
func NewInstitutionalHandler(institutionalService services.InstitutionalServicer, auditService services.AuditServicer) *InstitutionalHandler {
	return &InstitutionalHandler{institutionalService: institutionalService, auditService: auditService}
}

// CreateInstitutionalRequest represents the account creation request payload
type CreateInstitutionalRequest struct {
	Provider      string `json:"provider" binding:"required,max=255"`
	Type          string `json:"type" binding:"required,institutional_type"`
	AccountNumber string `json:"account_number" binding:"max=50"`
	Balance       int64  `json:"balance" binding:"gte=0"`
	Notes         string `json:"notes" binding:"max=1000"`
}

// UpdateBalanceRequest represents the balance update request payload
type UpdateBalanceRequest struct {
	Balance int64 `json:"balance" binding:"gte=0"`
}

// CreateAccount creates a new institutional account
// @Summary     Create an institutional account
// @Description Record a pension, insurance, study-fund, or provident account
// @Tags        institutional
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInstitutionalRequest true "Account data"
// @Success     201 {object} models.InstitutionalAccount "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutional [post]
func (h *InstitutionalHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInstitutionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.institutionalService.CreateAccount(
		userID, req.Provider, models.InstitutionalAccountType(req.Type),
		req.AccountNumber, req.Balance, req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INSTITUTIONAL", "institutional_account", account.ID, c.ClientIP(), map[string]interface{}{
		"provider": account.Provider,
		"type":     account.Type,
	})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccounts lists the user's institutional accounts
// @Summary     List institutional accounts
// @Description Get the user's institutional accounts
// @Tags        institutional
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.InstitutionalAccount] "Paginated accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutional [get]
func (h *InstitutionalHandler) GetAccounts(c *gin.Context) {
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

	result, err := h.institutionalService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccount returns a single institutional account
// @Summary     Get an institutional account
// @Description Get one of the user's institutional accounts by ID
// @Tags        institutional
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} models.InstitutionalAccount "Account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutional/{id} [get]
func (h *InstitutionalHandler) GetAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.institutionalService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateBalance updates an account's balance
// @Summary     Update account balance
// @Description Set the current balance of an institutional account
// @Tags        institutional
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Account ID"
// @Param       request body UpdateBalanceRequest true "New balance"
// @Success     200 {object} models.InstitutionalAccount "Account updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutional/{id}/balance [put]
func (h *InstitutionalHandler) UpdateBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.institutionalService.UpdateBalance(userID, accountID, req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INSTITUTIONAL_BALANCE", "institutional_account", account.ID, c.ClientIP(), map[string]interface{}{
		"balance": account.Balance,
	})

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount deletes an institutional account
// @Summary     Delete an institutional account
// @Description Delete one of the user's institutional accounts
// @Tags        institutional
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /institutional/{id} [delete]
func (h *InstitutionalHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.institutionalService.DeleteAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INSTITUTIONAL", "institutional_account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Institutional account deleted successfully"})
}
