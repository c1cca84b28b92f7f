package models

import "time"

// SavingsGoal represents a savings target. CurrentAmount is maintained as
// the sum of contribution records and never decreases.
type SavingsGoal struct {
	Base
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Name          string     `gorm:"not null" json:"name"`
	TargetAmount  int64      `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Contributions []GoalContribution `gorm:"foreignKey:GoalID" json:"contributions,omitempty"`
}

// Progress returns the goal's completion percentage. Values above 100 are
// possible when contributions overshoot the target.
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
}

// GoalContribution is a single deposit toward a savings goal. Append-only.
type GoalContribution struct {
	Base
	GoalID uint      `gorm:"not null;index" json:"goal_id"`
	Amount int64     `gorm:"type:bigint;not null" json:"amount"`
	Date   time.Time `gorm:"not null" json:"date"`
	Note   string    `json:"note"`
}
