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

// RecurringHandler handles recurring-rule requests
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// CreateRecurringRequest represents the recurring-rule creation request payload
type CreateRecurringRequest struct {
	CategoryID  *uint      `json:"category_id"`
	Description string     `json:"description" binding:"required,max=500"`
	Amount      int64      `json:"amount" binding:"required,gt=0"`
	Type        string     `json:"type" binding:"required,transaction_type"`
	Frequency   string     `json:"frequency" binding:"required,recurring_frequency"`
	NextDate    time.Time  `json:"next_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateRecurringRequest represents the recurring-rule update request payload
type UpdateRecurringRequest struct {
	Description string     `json:"description" binding:"omitempty,max=500"`
	Amount      *int64     `json:"amount" binding:"omitempty,gt=0"`
	Frequency   *string    `json:"frequency" binding:"omitempty,recurring_frequency"`
	NextDate    *time.Time `json:"next_date"`
	EndDate     *time.Time `json:"end_date"`
	IsActive    *bool      `json:"is_active"`
}

// CreateRule creates a new recurring rule
// @Summary     Create a recurring rule
// @Description Create a rule for a recurring payment or income
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRequest true "Rule data"
// @Success     201 {object} models.RecurringRule "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.CreateRule(
		userID, req.CategoryID, req.Description, req.Amount,
		models.TransactionType(req.Type), models.RecurringFrequency(req.Frequency),
		req.NextDate, req.EndDate,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING", "recurring_rule", rule.ID, c.ClientIP(), map[string]interface{}{
		"description": rule.Description,
		"amount":      rule.Amount,
		"frequency":   rule.Frequency,
	})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetRules lists the user's recurring rules
// @Summary     List recurring rules
// @Description Get the user's recurring rules
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number (default 1)"
// @Param       page_size query int false "Page size (default 20, max 100)"
// @Param       active_only query bool false "Only active rules"
// @Success     200 {object} pagination.PageResponse[models.RecurringRule] "Paginated rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetRules(c *gin.Context) {
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

	activeOnly, err := parseOptionalBool(c, "active_only")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.GetUserRules(userID, page, activeOnly != nil && *activeOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcoming lists rules due within a horizon
// @Summary     List upcoming payments
// @Description Get active rules whose next date falls within the horizon (default 7 days)
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Horizon in days (default 7, max 365)"
// @Success     200 {array} models.RecurringRule "Upcoming rules, soonest first"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/upcoming [get]
func (h *RecurringHandler) GetUpcoming(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 365 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be between 0 and 365"))
			return
		}
		days = parsed
	}

	rules, err := h.recurringService.GetUpcoming(userID, days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetRule returns a single recurring rule
// @Summary     Get a recurring rule
// @Description Get one of the user's recurring rules by ID
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     200 {object} models.RecurringRule "Rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRuleByID(userID, ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// UpdateRule updates a recurring rule
// @Summary     Update a recurring rule
// @Description Update fields of one of the user's recurring rules
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Param       request body UpdateRecurringRequest true "Fields to update"
// @Success     200 {object} models.RecurringRule "Rule updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [put]
func (h *RecurringHandler) UpdateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var frequency *models.RecurringFrequency
	if req.Frequency != nil {
		f := models.RecurringFrequency(*req.Frequency)
		frequency = &f
	}

	rule, err := h.recurringService.UpdateRule(userID, ruleID, req.Description, req.Amount, frequency, req.NextDate, req.EndDate, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_RECURRING", "recurring_rule", rule.ID, c.ClientIP(), map[string]interface{}{
		"description": rule.Description,
	})

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// DeleteRule deletes a recurring rule
// @Summary     Delete a recurring rule
// @Description Delete one of the user's recurring rules
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     200 {object} MessageResponse "Rule deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRule(userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING", "recurring_rule", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Recurring rule deleted successfully"})
}
