package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction represents a financial transaction in the system.
// Amounts are stored in agorot (currency minor units) and are never
// negative; the type field carries the direction.
type Transaction struct {
	Base
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	CategoryID       *uint           `json:"category_id,omitempty"`
	Type             TransactionType `gorm:"not null" json:"type"`
	Amount           int64           `gorm:"type:bigint;not null" json:"amount"`
	Description      string          `json:"description"`
	MerchantName     string          `json:"merchant_name"`
	Date             time.Time       `gorm:"not null;index" json:"date"`
	IsMaaserRelevant bool            `gorm:"default:false" json:"is_maaser_relevant"`
	IsRecurring      bool            `gorm:"default:false" json:"is_recurring"`
	Tags             []string        `gorm:"serializer:json" json:"tags,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
