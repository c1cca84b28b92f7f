package models

import "time"

// MaaserRecipientType classifies where a maaser payment went.
type MaaserRecipientType string

const (
	MaaserRecipientTzedaka     MaaserRecipientType = "tzedaka"
	MaaserRecipientInstitution MaaserRecipientType = "institution"
	MaaserRecipientIndividual  MaaserRecipientType = "individual"
	MaaserRecipientOther       MaaserRecipientType = "other"
)

// MaaserPayment records a single tithe payment. Append-only ledger; the
// monthly due amount is always recomputed from income transactions.
type MaaserPayment struct {
	Base
	UserID        uint                `gorm:"not null;index" json:"user_id"`
	Amount        int64               `gorm:"type:bigint;not null" json:"amount"`
	PaymentDate   time.Time           `gorm:"not null" json:"payment_date"`
	Recipient     string              `json:"recipient"`
	RecipientType MaaserRecipientType `gorm:"default:'tzedaka'" json:"recipient_type"`
	Description   string              `json:"description"`
}
