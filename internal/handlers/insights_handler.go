package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "agorot/internal/errors"
	"agorot/internal/services"
)

// InsightsHandler handles categorization and prediction requests
type InsightsHandler struct {
	categorizerService services.CategorizerServicer
	predictionService  services.PredictionServicer
	auditService       services.AuditServicer
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(categorizerService services.CategorizerServicer, predictionService services.PredictionServicer, auditService services.AuditServicer) *InsightsHandler {
	return &InsightsHandler{
		categorizerService: categorizerService,
		predictionService:  predictionService,
		auditService:       auditService,
	}
}

// CategorizeRequest represents a single categorization request payload
type CategorizeRequest struct {
	Description  string `json:"description" binding:"max=500"`
	MerchantName string `json:"merchant_name" binding:"max=255"`
	Amount       int64  `json:"amount" binding:"gte=0"`
}

// Categorize suggests a category for a transaction description
// @Summary     Suggest a category
// @Description Run the categorizer against a description and merchant name. Returns null when no stage matches.
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CategorizeRequest true "Transaction details"
// @Success     200 {object} services.CategorizeResult "Suggestion, or null when nothing matched"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/categorize [post]
func (h *InsightsHandler) Categorize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.categorizerService.Categorize(userID, req.Description, req.MerchantName, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": result})
}

// AutoCategorize categorizes the user's uncategorized transactions
// @Summary     Auto-categorize transactions
// @Description Run the categorizer over uncategorized transactions and persist confident matches
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Number of transactions categorized"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/auto-categorize [post]
func (h *InsightsHandler) AutoCategorize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := h.categorizerService.AutoCategorizeAll(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "AUTO_CATEGORIZE", "transaction", 0, c.ClientIP(), map[string]interface{}{
		"updated": updated,
	})

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// GetPrediction returns next month's spend prediction
// @Summary     Predict next month's spending
// @Description Get the predicted total, per-category predictions, unusual expenses, and recommendations
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Prediction "Spend prediction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/prediction [get]
func (h *InsightsHandler) GetPrediction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	prediction, err := h.predictionService.PredictNextMonth(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prediction": prediction})
}
