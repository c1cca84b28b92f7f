package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
	"agorot/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the transaction creation request payload
type CreateTransactionRequest struct {
	CategoryID       *uint      `json:"category_id"`
	Type             string     `json:"type" binding:"required,transaction_type"`
	Amount           int64      `json:"amount" binding:"required,gt=0"`
	Description      string     `json:"description" binding:"max=500"`
	MerchantName     string     `json:"merchant_name" binding:"max=255"`
	Date             *time.Time `json:"date"`
	IsMaaserRelevant bool       `json:"is_maaser_relevant"`
	IsRecurring      bool       `json:"is_recurring"`
	Tags             []string   `json:"tags" binding:"max=20,dive,max=50"`
}

// UpdateTransactionRequest represents the transaction update request payload
type UpdateTransactionRequest struct {
	CategoryID       *uint    `json:"category_id"`
	Amount           *int64   `json:"amount" binding:"omitempty,gt=0"`
	Description      *string  `json:"description" binding:"omitempty,max=500"`
	IsMaaserRelevant *bool    `json:"is_maaser_relevant"`
	Tags             []string `json:"tags" binding:"max=20,dive,max=50"`
}

// SetCategoryRequest represents the categorize request payload
type SetCategoryRequest struct {
	CategoryID uint `json:"category_id" binding:"required"`
}

// parseDateQuery parses an optional date query parameter. Accepts RFC 3339
// timestamps or bare dates (2006-01-02). Returns nil when absent.
func parseDateQuery(c *gin.Context, param string) (*time.Time, error) {
	raw := c.Query(param)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
}

// parseInt64Query parses an optional int64 query parameter.
func parseInt64Query(c *gin.Context, param string) (*int64, error) {
	raw := c.Query(param)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return &v, nil
}

// buildTransactionFilter assembles the list filter from query parameters.
func buildTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.FromDate, err = parseDateQuery(c, "from_date"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseDateQuery(c, "to_date"); err != nil {
		return filter, err
	}
	if filter.MinAmount, err = parseInt64Query(c, "min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseInt64Query(c, "max_amount"); err != nil {
		return filter, err
	}

	if raw := c.Query("type"); raw != "" {
		switch raw {
		case "income", "expense", "transfer":
			transactionType := models.TransactionType(raw)
			filter.Type = &transactionType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income, expense, or transfer")
		}
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id")
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	filter.Text = c.Query("q")
	filter.Tag = c.Query("tag")

	if maaserOnly, err := parseOptionalBool(c, "maaser_only"); err != nil {
		return filter, err
	} else if maaserOnly != nil {
		filter.MaaserOnly = *maaserOnly
	}
	if uncategorized, err := parseOptionalBool(c, "uncategorized"); err != nil {
		return filter, err
	} else if uncategorized != nil {
		filter.Uncategorized = *uncategorized
	}

	return filter, nil
}

// CreateTransaction creates a new transaction
// @Summary     Create a transaction
// @Description Record a new income, expense, or transfer transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction data"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}

	transaction, err := h.transactionService.CreateTransaction(
		userID, req.CategoryID, models.TransactionType(req.Type), req.Amount,
		req.Description, req.MerchantName, date, req.IsMaaserRelevant, req.IsRecurring, req.Tags,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), map[string]interface{}{
		"type":   transaction.Type,
		"amount": transaction.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions lists the user's transactions
// @Summary     List transactions
// @Description Get the user's transactions, newest first, with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Param       type query string false "Filter by type" Enums(income, expense, transfer)
// @Param       category_id query int false "Filter by category"
// @Param       from_date query string false "Earliest date (inclusive, RFC 3339 or 2006-01-02)"
// @Param       to_date query string false "Latest date (inclusive)"
// @Param       min_amount query int false "Minimum amount in agorot"
// @Param       max_amount query int false "Maximum amount in agorot"
// @Param       q query string false "Free-text search over description and merchant"
// @Param       tag query string false "Filter by tag"
// @Param       maaser_only query bool false "Only maaser-relevant transactions"
// @Param       uncategorized query bool false "Only uncategorized transactions"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
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

	filter, err := buildTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns a single transaction
// @Summary     Get a transaction
// @Description Get one of the user's transactions by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction updates a transaction
// @Summary     Update a transaction
// @Description Update fields of one of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, req.CategoryID, req.Amount, req.Description, req.IsMaaserRelevant, req.Tags)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), map[string]interface{}{
		"amount": transaction.Amount,
	})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction deletes a transaction
// @Summary     Delete a transaction
// @Description Delete one of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// SetCategory assigns a category to a transaction
// @Summary     Categorize a transaction
// @Description Assign a category to one of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Param       request body SetCategoryRequest true "Category assignment"
// @Success     200 {object} MessageResponse "Category assigned"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/category [put]
func (h *TransactionHandler) SetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.transactionService.SetCategory(userID, transactionID, req.CategoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CATEGORIZE_TRANSACTION", "transaction", transactionID, c.ClientIP(), map[string]interface{}{
		"category_id": req.CategoryID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Category assigned successfully"})
}
