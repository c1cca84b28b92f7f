package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "agorot/internal/errors"
	"agorot/internal/services"
)

// BankingHandler handles open-banking connection requests
type BankingHandler struct {
	bankingService services.BankingServicer
	auditService   services.AuditServicer
}

// NewBankingHandler creates a new BankingHandler
func NewBankingHandler(bankingService services.BankingServicer, auditService services.AuditServicer) *BankingHandler {
	return &BankingHandler{bankingService: bankingService, auditService: auditService}
}

// ConnectRequest represents the connection initiation request payload
type ConnectRequest struct {
	ProviderCode string `json:"provider_code" binding:"required,provider_code"`
}

// InitConnection starts an open-banking OAuth flow
// @Summary     Connect a bank account
// @Description Start the OAuth authorization flow with a banking provider
// @Tags        banking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ConnectRequest true "Provider to connect"
// @Success     201 {object} models.OpenBankingConnection "Pending connection with OAuth state"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/connections [post]
func (h *BankingHandler) InitConnection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	connection, err := h.bankingService.InitConnection(userID, req.ProviderCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INIT_BANK_CONNECTION", "banking_connection", connection.ID, c.ClientIP(), map[string]interface{}{
		"provider": connection.ProviderCode,
	})

	// The state is excluded from the model's JSON; the client needs it to
	// build the provider's authorization redirect.
	c.JSON(http.StatusCreated, gin.H{
		"connection":  connection,
		"oauth_state": connection.OAuthState,
	})
}

// HandleCallback completes the OAuth flow. The provider redirects here, so
// the route is unauthenticated; the state parameter ties the request to a
// pending connection.
// @Summary     OAuth callback
// @Description Exchange the provider's authorization code for tokens and activate the connection
// @Tags        banking
// @Accept      json
// @Produce     json
// @Param       state query string true "OAuth state from the connect step"
// @Param       code query string true "Authorization code from the provider"
// @Success     200 {object} models.OpenBankingConnection "Connection activated"
// @Failure     400 {object} ErrorResponse "Unknown or expired state"
// @Failure     502 {object} ErrorResponse "Token exchange failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/callback [get]
func (h *BankingHandler) HandleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "state and code are required"))
		return
	}

	connection, err := h.bankingService.HandleCallback(c.Request.Context(), state, code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(connection.UserID, "BANK_CONNECTED", "banking_connection", connection.ID, c.ClientIP(), map[string]interface{}{
		"provider": connection.ProviderCode,
	})

	c.JSON(http.StatusOK, gin.H{"connection": connection})
}

// ListConnections lists the user's banking connections
// @Summary     List bank connections
// @Description Get the user's open-banking connections
// @Tags        banking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.OpenBankingConnection "Connections"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/connections [get]
func (h *BankingHandler) ListConnections(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	connections, err := h.bankingService.ListConnections(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": connections})
}

// RefreshConnection refreshes a connection's access token
// @Summary     Refresh connection tokens
// @Description Exchange the stored refresh token for a new access token
// @Tags        banking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Connection ID"
// @Success     200 {object} models.OpenBankingConnection "Connection with fresh tokens"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Connection not found"
// @Failure     409 {object} ErrorResponse "Connection not active"
// @Failure     502 {object} ErrorResponse "Token exchange failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/connections/{id}/refresh [post]
func (h *BankingHandler) RefreshConnection(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	connectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	connection, err := h.bankingService.RefreshConnection(c.Request.Context(), userID, connectionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection": connection})
}

// Disconnect revokes a banking connection
// @Summary     Disconnect a bank
// @Description Revoke a connection and discard its tokens
// @Tags        banking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Connection ID"
// @Success     200 {object} MessageResponse "Connection revoked"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Connection not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/connections/{id} [delete]
func (h *BankingHandler) Disconnect(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	connectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.bankingService.Disconnect(userID, connectionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "BANK_DISCONNECTED", "banking_connection", connectionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Connection revoked successfully"})
}

// RunSync triggers a sync run for a connection
// @Summary     Sync a bank connection
// @Description Run a sync against the provider, refreshing the access token first if expired
// @Tags        banking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Connection ID"
// @Success     200 {object} models.SyncHistory "Sync run result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Connection not found"
// @Failure     409 {object} ErrorResponse "Connection not active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/connections/{id}/sync [post]
func (h *BankingHandler) RunSync(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	connectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	run, err := h.bankingService.RunSync(c.Request.Context(), userID, connectionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "BANK_SYNC", "banking_connection", connectionID, c.ClientIP(), map[string]interface{}{
		"status": run.Status,
	})

	c.JSON(http.StatusOK, gin.H{"sync": run})
}

// ListSyncHistory lists recent sync runs for a connection
// @Summary     List sync history
// @Description Get recent sync runs for a connection, newest first
// @Tags        banking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Connection ID"
// @Param       limit query int false "Maximum runs to return (default 20, max 100)"
// @Success     200 {array} models.SyncHistory "Sync runs"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Connection not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banking/connections/{id}/history [get]
func (h *BankingHandler) ListSyncHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	connectionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	history, err := h.bankingService.ListSyncHistory(userID, connectionID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
