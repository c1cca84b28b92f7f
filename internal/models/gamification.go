package models

import "time"

// UserGamification is the per-user gamification state. One row per user.
// Total points are intentionally not stored here: the user_achievements
// table is the append-only points ledger and totals are derived as a sum
// aggregate, so concurrent achievement scans cannot lose increments.
type UserGamification struct {
	Base
	UserID           uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	MonthsInBudget   int        `gorm:"default:0" json:"months_in_budget"`
	EarlyBirdDays    int        `gorm:"default:0" json:"early_bird_days"`
	NightOwlDays     int        `gorm:"default:0" json:"night_owl_days"`
	WeekendDays      int        `gorm:"default:0" json:"weekend_days"`
}

// UserAchievement records one earned achievement. Append-only; the unique
// index on (user_id, achievement_id) guarantees at most one award even
// under concurrent scans.
type UserAchievement struct {
	Base
	UserID        uint      `gorm:"not null;uniqueIndex:uq_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;uniqueIndex:uq_user_achievement" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`
	Points        int       `gorm:"not null" json:"points"`
}
