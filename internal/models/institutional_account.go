package models

import "time"

// InstitutionalAccountType represents the kind of institutional holding.
type InstitutionalAccountType string

const (
	InstitutionalTypePension   InstitutionalAccountType = "pension"
	InstitutionalTypeInsurance InstitutionalAccountType = "insurance"
	InstitutionalTypeStudyFund InstitutionalAccountType = "study_fund"
	InstitutionalTypeProvident InstitutionalAccountType = "provident"
)

// InstitutionalAccount is bookkeeping for pension/insurance holdings
// managed by an external institution. Balances are user-reported or
// synced; the core never derives them.
type InstitutionalAccount struct {
	Base
	UserID        uint                     `gorm:"not null;index" json:"user_id"`
	Provider      string                   `gorm:"not null" json:"provider"`
	Type          InstitutionalAccountType `gorm:"not null" json:"type"`
	AccountNumber string                   `json:"account_number"`
	Balance       int64                    `gorm:"type:bigint;not null;default:0" json:"balance"`
	LastUpdated   *time.Time               `json:"last_updated,omitempty"`
	Notes         string                   `json:"notes"`
}
