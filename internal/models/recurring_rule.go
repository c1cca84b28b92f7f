package models

import "time"

// RecurringFrequency represents how often a recurring rule fires.
type RecurringFrequency string

const (
	FrequencyDaily   RecurringFrequency = "daily"
	FrequencyWeekly  RecurringFrequency = "weekly"
	FrequencyMonthly RecurringFrequency = "monthly"
	FrequencyYearly  RecurringFrequency = "yearly"
)

// RecurringRule describes a repeating payment or income. Rules drive bill
// reminders only; they never materialize transactions themselves.
type RecurringRule struct {
	Base
	UserID      uint               `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint              `json:"category_id,omitempty"`
	Description string             `gorm:"not null" json:"description"`
	Amount      int64              `gorm:"type:bigint;not null" json:"amount"`
	Type        TransactionType    `gorm:"not null" json:"type"`
	Frequency   RecurringFrequency `gorm:"not null" json:"frequency"`
	NextDate    time.Time          `gorm:"not null" json:"next_date"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
	IsActive    bool               `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
