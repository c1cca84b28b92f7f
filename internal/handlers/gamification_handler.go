package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agorot/internal/services"
)

// GamificationHandler handles gamification requests
type GamificationHandler struct {
	gamificationService services.GamificationServicer
}

// NewGamificationHandler creates a new GamificationHandler
func NewGamificationHandler(gamificationService services.GamificationServicer) *GamificationHandler {
	return &GamificationHandler{gamificationService: gamificationService}
}

// GetSummary returns the user's gamification state
// @Summary     Get gamification summary
// @Description Get points, level, streak state, and earned achievements
// @Tags        gamification
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GamificationSummary "Gamification summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gamification/summary [get]
func (h *GamificationHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.gamificationService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// CheckAchievements evaluates and awards any newly earned achievements
// @Summary     Check for new achievements
// @Description Evaluate all achievement predicates and award any newly earned ones
// @Tags        gamification
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.Achievement "Achievements earned by this check"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gamification/check [post]
func (h *GamificationHandler) CheckAchievements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	earned, err := h.gamificationService.CheckNewAchievements(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"earned": earned})
}

// GetCatalog returns the full achievement and level catalog
// @Summary     Get achievement catalog
// @Description Get every defined achievement and level threshold
// @Tags        gamification
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.Achievement "Achievement catalog"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /gamification/catalog [get]
func (h *GamificationHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"achievements": services.Achievements(),
		"levels":       services.Levels(),
	})
}
