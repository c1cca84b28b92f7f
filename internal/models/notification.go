package models

// NotificationType identifies which rule produced a notification.
type NotificationType string

const (
	NotificationBudgetWarning   NotificationType = "budget_warning"
	NotificationBudgetExceeded  NotificationType = "budget_exceeded"
	NotificationBillReminder    NotificationType = "bill_reminder"
	NotificationUnusualExpense  NotificationType = "unusual_expense"
	NotificationPredictionAlert NotificationType = "prediction_alert"
	NotificationStreakReminder  NotificationType = "streak_reminder"
	NotificationGoalProgress    NotificationType = "goal_progress"
	NotificationAchievement     NotificationType = "achievement"
	NotificationMaaserReminder  NotificationType = "maaser_reminder"
)

// NotificationPriority is the display priority of a notification.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is a persisted in-app notification. DedupDay holds the
// creation date as YYYY-MM-DD; the unique index on (user_id, type,
// dedup_day) enforces at most one notification per type per user per
// calendar day at the persistence layer. The key is deliberately coarse:
// two budgets warning on the same day share one slot.
type Notification struct {
	Base
	UserID    uint                 `gorm:"not null;uniqueIndex:uq_notification_day" json:"user_id"`
	Type      NotificationType     `gorm:"not null;uniqueIndex:uq_notification_day" json:"type"`
	DedupDay  string               `gorm:"size:10;not null;uniqueIndex:uq_notification_day" json:"-"`
	Title     string               `gorm:"not null" json:"title"`
	Message   string               `gorm:"not null" json:"message"`
	Priority  NotificationPriority `gorm:"not null;default:'medium'" json:"priority"`
	ActionURL string               `json:"action_url,omitempty"`
	IsRead    bool                 `gorm:"default:false" json:"is_read"`
}
