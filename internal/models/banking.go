package models

import "time"

// ConnectionStatus is the lifecycle state of an open-banking connection.
type ConnectionStatus string

const (
	ConnectionPending ConnectionStatus = "pending"
	ConnectionActive  ConnectionStatus = "active"
	ConnectionError   ConnectionStatus = "error"
	ConnectionRevoked ConnectionStatus = "revoked"
)

// OpenBankingConnection tracks an aggregator connection for a user.
// Tokens are opaque to the core; the only signal it consumes is whether
// the connection is live.
type OpenBankingConnection struct {
	Base
	UserID         uint             `gorm:"not null;index" json:"user_id"`
	ProviderCode   string           `gorm:"not null" json:"provider_code"`
	Status         ConnectionStatus `gorm:"not null;default:'pending'" json:"status"`
	OAuthState     string           `gorm:"column:oauth_state;size:64" json:"-"`
	AccessToken    string           `json:"-"`
	RefreshToken   string           `json:"-"`
	TokenExpiresAt *time.Time       `json:"token_expires_at,omitempty"`
	LastSync       *time.Time       `json:"last_sync,omitempty"`
}

// SyncStatus is the outcome of a sync run.
type SyncStatus string

const (
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncHistory records one sync attempt against a connection.
type SyncHistory struct {
	Base
	ConnectionID     uint       `gorm:"not null;index" json:"connection_id"`
	BatchID          string     `gorm:"size:36;not null" json:"batch_id"`
	Status           SyncStatus `gorm:"not null" json:"status"`
	TransactionsSeen int        `gorm:"default:0" json:"transactions_seen"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	StartedAt        time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}
