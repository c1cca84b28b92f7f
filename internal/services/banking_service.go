package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"agorot/internal/banking"
	apperrors "agorot/internal/errors"
	"agorot/internal/logger"
	"agorot/internal/models"
	"agorot/internal/token"
)

// bankingService manages open-banking connections and their sync history.
type bankingService struct {
	db     *gorm.DB
	client *banking.Client
}

// NewBankingService creates a new BankingServicer backed by the given
// aggregator client.
func NewBankingService(db *gorm.DB, client *banking.Client) BankingServicer {
	return &bankingService{db: db, client: client}
}

// InitConnection creates a pending connection with a fresh OAuth state. The
// caller redirects the user to the provider's consent page carrying the state.
func (s *bankingService) InitConnection(userID uint, providerCode string) (*models.OpenBankingConnection, error) {
	if providerCode == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "provider code is required")
	}

	connection := &models.OpenBankingConnection{
		UserID:       userID,
		ProviderCode: providerCode,
		Status:       models.ConnectionPending,
		OAuthState:   token.NewState(),
	}

	if err := s.db.Create(connection).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return connection, nil
}

// HandleCallback completes the OAuth flow: it resolves the pending connection
// by state, exchanges the authorization code, and activates the connection.
// The state is cleared on success so it cannot be replayed.
func (s *bankingService) HandleCallback(ctx context.Context, state, code string) (*models.OpenBankingConnection, error) {
	if !token.IsValid(state) {
		return nil, apperrors.ErrInvalidOAuthState
	}

	var connection models.OpenBankingConnection
	if err := s.db.Where("oauth_state = ? AND status = ?", state, models.ConnectionPending).First(&connection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOAuthState
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tokens, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		if updateErr := s.db.Model(&connection).Update("status", models.ConnectionError).Error; updateErr != nil {
			logger.Get().Errorw("mark connection errored failed", "connection_id", connection.ID, "error", updateErr)
		}
		return nil, apperrors.Wrap(apperrors.ErrProviderExchange, err)
	}

	expiresAt := tokens.ExpiresAt(time.Now())
	updates := map[string]interface{}{
		"status":           models.ConnectionActive,
		"oauth_state":      "",
		"access_token":     tokens.AccessToken,
		"refresh_token":    tokens.RefreshToken,
		"token_expires_at": expiresAt,
	}
	if err := s.db.Model(&connection).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	connection.Status = models.ConnectionActive
	connection.OAuthState = ""
	connection.AccessToken = tokens.AccessToken
	connection.RefreshToken = tokens.RefreshToken
	connection.TokenExpiresAt = &expiresAt
	return &connection, nil
}

// RefreshConnection rotates the token pair of an active connection.
func (s *bankingService) RefreshConnection(ctx context.Context, userID, connectionID uint) (*models.OpenBankingConnection, error) {
	connection, err := s.getConnection(userID, connectionID)
	if err != nil {
		return nil, err
	}
	if connection.Status != models.ConnectionActive {
		return nil, apperrors.ErrConnectionInactive
	}

	tokens, err := s.client.Refresh(ctx, connection.RefreshToken)
	if err != nil {
		if updateErr := s.db.Model(connection).Update("status", models.ConnectionError).Error; updateErr != nil {
			logger.Get().Errorw("mark connection errored failed", "connection_id", connection.ID, "error", updateErr)
		}
		return nil, apperrors.Wrap(apperrors.ErrProviderExchange, err)
	}

	expiresAt := tokens.ExpiresAt(time.Now())
	updates := map[string]interface{}{
		"access_token":     tokens.AccessToken,
		"token_expires_at": expiresAt,
	}
	// Some providers rotate the refresh token, some return it empty.
	if tokens.RefreshToken != "" {
		updates["refresh_token"] = tokens.RefreshToken
		connection.RefreshToken = tokens.RefreshToken
	}
	if err := s.db.Model(connection).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	connection.AccessToken = tokens.AccessToken
	connection.TokenExpiresAt = &expiresAt
	return connection, nil
}

// ListConnections returns the user's connections, newest first.
func (s *bankingService) ListConnections(userID uint) ([]models.OpenBankingConnection, error) {
	var connections []models.OpenBankingConnection
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&connections).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return connections, nil
}

// Disconnect revokes a connection and drops its tokens.
func (s *bankingService) Disconnect(userID, connectionID uint) error {
	connection, err := s.getConnection(userID, connectionID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status":        models.ConnectionRevoked,
		"access_token":  "",
		"refresh_token": "",
		"oauth_state":   "",
	}
	if err := s.db.Model(connection).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RunSync executes one sync run against an active connection and records it.
// Provider transaction feeds are not ingested yet, so a run verifies the
// connection, stamps last_sync, and writes a history row.
func (s *bankingService) RunSync(ctx context.Context, userID, connectionID uint) (*models.SyncHistory, error) {
	connection, err := s.getConnection(userID, connectionID)
	if err != nil {
		return nil, err
	}
	if connection.Status != models.ConnectionActive {
		return nil, apperrors.ErrConnectionInactive
	}

	// Refresh first if the access token is stale.
	if connection.TokenExpiresAt != nil && connection.TokenExpiresAt.Before(time.Now()) {
		if _, err := s.RefreshConnection(ctx, userID, connectionID); err != nil {
			return s.recordSync(connection.ID, models.SyncStatusFailed, 0, err.Error())
		}
	}

	now := time.Now()
	if err := s.db.Model(connection).Update("last_sync", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.recordSync(connection.ID, models.SyncStatusCompleted, 0, "")
}

// ListSyncHistory returns recent sync runs for a user's connection.
func (s *bankingService) ListSyncHistory(userID, connectionID uint, limit int) ([]models.SyncHistory, error) {
	if _, err := s.getConnection(userID, connectionID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var history []models.SyncHistory
	if err := s.db.Where("connection_id = ?", connectionID).
		Order("started_at DESC").
		Limit(limit).
		Find(&history).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return history, nil
}

func (s *bankingService) getConnection(userID, connectionID uint) (*models.OpenBankingConnection, error) {
	var connection models.OpenBankingConnection
	if err := s.db.Where("id = ? AND user_id = ?", connectionID, userID).First(&connection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &connection, nil
}

func (s *bankingService) recordSync(connectionID uint, status models.SyncStatus, seen int, errorMessage string) (*models.SyncHistory, error) {
	now := time.Now()
	run := &models.SyncHistory{
		ConnectionID:     connectionID,
		BatchID:          token.NewBatchID(),
		Status:           status,
		TransactionsSeen: seen,
		ErrorMessage:     errorMessage,
		StartedAt:        now,
		FinishedAt:       &now,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return run, nil
}
