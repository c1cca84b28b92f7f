package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "agorot/internal/errors"
	"agorot/internal/logger"
	"agorot/internal/models"
)

// Notification check parameters.
const (
	billReminderHorizonDays = 3
	streakReminderFloor     = 3
	predictionAlertRatio    = 1.15
)

// goalMilestones are the progress bands announced, in percent. A band is
// [milestone, milestone+5) so a goal fires each band at most once per pass.
var goalMilestones = []float64{50, 75, 90, 100}

// notificationService implements the smart-notification engine. De-duplication
// lives in the unique index on (user_id, type, dedup_day): inserts conflict
// away instead of racing a read-then-write check.
type notificationService struct {
	db         *gorm.DB
	prediction PredictionServicer
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB, prediction PredictionServicer) NotificationServicer {
	return &notificationService{db: db, prediction: prediction}
}

// CheckSmartNotifications runs every rule check and persists the results.
// Only notifications that survived de-duplication are returned.
func (s *notificationService) CheckSmartNotifications(userID uint) ([]models.Notification, error) {
	now := time.Now()
	var candidates []models.Notification

	budgetAlerts, err := s.checkBudgetAlerts(userID, now)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, budgetAlerts...)

	billReminders, err := s.checkBillReminders(userID, now)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, billReminders...)

	unusual, err := s.checkUnusualExpenses(userID, now)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, unusual...)

	// Prediction alerts are best-effort; a predictor failure should not
	// block budget or bill alerts.
	predictionAlerts, err := s.checkPredictionAlerts(userID, now)
	if err != nil {
		logger.Get().Warnw("prediction alerts failed", "user_id", userID, "error", err)
	} else {
		candidates = append(candidates, predictionAlerts...)
	}

	streakReminder, err := s.checkStreakReminder(userID, now)
	if err != nil {
		return nil, err
	}
	if streakReminder != nil {
		candidates = append(candidates, *streakReminder)
	}

	goalAlerts, err := s.checkGoalProgress(userID)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, goalAlerts...)

	created := []models.Notification{}
	day := now.Format("2006-01-02")
	for i := range candidates {
		candidates[i].UserID = userID
		candidates[i].DedupDay = day

		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidates[i])
		if result.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected > 0 {
			created = append(created, candidates[i])
		}
	}

	return created, nil
}

// checkBudgetAlerts warns when an active budget crosses its alert threshold
// and escalates once it is fully spent.
func (s *notificationService) checkBudgetAlerts(userID uint, now time.Time) ([]models.Notification, error) {
	var budgets []models.Budget
	err := s.db.Preload("Category").Where("user_id = ? AND is_active = ?", userID, true).Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	for _, budget := range budgets {
		if budget.Amount <= 0 {
			continue
		}

		periodStart, periodEnd := currentPeriodWindow(budget.Period, now)

		var spent int64
		err := s.db.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND category_id = ? AND type = ? AND date BETWEEN ? AND ?",
				userID, budget.CategoryID, models.TransactionTypeExpense, periodStart, periodEnd).
			Scan(&spent).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		percentage := float64(spent) / float64(budget.Amount) * 100

		if percentage >= float64(budget.AlertThreshold) && percentage < 100 {
			notifications = append(notifications, models.Notification{
				Type:      models.NotificationBudgetWarning,
				Title:     "⚠️ קרוב לתקציב",
				Message:   fmt.Sprintf("הוצאת %d%% מתקציב \"%s\". נותרו %s", int(math.Round(percentage)), budget.Category.NameHe, shekels(budget.Amount-spent)),
				Priority:  models.PriorityMedium,
				ActionURL: "/budgets",
			})
		}

		if percentage >= 100 {
			notifications = append(notifications, models.Notification{
				Type:      models.NotificationBudgetExceeded,
				Title:     "🚨 חריגה מתקציב!",
				Message:   fmt.Sprintf("חרגת ב-%s מתקציב \"%s\"", shekels(spent-budget.Amount), budget.Category.NameHe),
				Priority:  models.PriorityHigh,
				ActionURL: "/budgets",
			})
		}
	}

	return notifications, nil
}

// checkBillReminders reminds about active recurring payments due within the
// next three days.
func (s *notificationService) checkBillReminders(userID uint, now time.Time) ([]models.Notification, error) {
	horizon := now.AddDate(0, 0, billReminderHorizonDays)

	var rules []models.RecurringRule
	err := s.db.Where("user_id = ? AND is_active = ? AND next_date > ? AND next_date <= ?",
		userID, true, now, horizon).Find(&rules).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	for _, rule := range rules {
		daysLeft := int(math.Ceil(rule.NextDate.Sub(now).Hours() / 24))
		notifications = append(notifications, models.Notification{
			Type:      models.NotificationBillReminder,
			Title:     "📅 חשבון מתקרב",
			Message:   fmt.Sprintf("תשלום \"%s\" בעוד %d ימים (%s)", rule.Description, daysLeft, shekels(rule.Amount)),
			Priority:  models.PriorityMedium,
			ActionURL: "/recurring",
		})
	}

	return notifications, nil
}

// checkUnusualExpenses flags today's expenses that sit strictly above two
// standard deviations over the trailing 30-day mean.
func (s *notificationService) checkUnusualExpenses(userID uint, now time.Time) ([]models.Notification, error) {
	todayStart := dayOf(now)

	var todayExpenses []models.Transaction
	err := s.db.Where("user_id = ? AND type = ? AND date >= ?", userID, models.TransactionTypeExpense, todayStart).
		Find(&todayExpenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(todayExpenses) == 0 {
		return nil, nil
	}

	var last30 []models.Transaction
	err = s.db.Select("amount").
		Where("user_id = ? AND type = ? AND date >= ?", userID, models.TransactionTypeExpense, now.AddDate(0, 0, -30)).
		Find(&last30).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(last30) == 0 {
		return nil, nil
	}

	var sum float64
	for _, t := range last30 {
		sum += float64(t.Amount)
	}
	mean := sum / float64(len(last30))

	var variance float64
	for _, t := range last30 {
		variance += (float64(t.Amount) - mean) * (float64(t.Amount) - mean)
	}
	variance /= float64(len(last30))
	threshold := mean + 2*math.Sqrt(variance)

	var notifications []models.Notification
	for _, transaction := range todayExpenses {
		if float64(transaction.Amount) > threshold {
			notifications = append(notifications, models.Notification{
				Type:      models.NotificationUnusualExpense,
				Title:     "⚡ הוצאה חריגה זוהתה",
				Message:   fmt.Sprintf("הוצאת %s על \"%s\" - זה גבוה מהרגיל שלך", shekels(transaction.Amount), transaction.Description),
				Priority:  models.PriorityHigh,
				ActionURL: "/transactions",
			})
		}
	}

	return notifications, nil
}

// checkPredictionAlerts warns when next month is predicted to run well over
// this month's spend, and surfaces the predictor's recommendations.
func (s *notificationService) checkPredictionAlerts(userID uint, now time.Time) ([]models.Notification, error) {
	prediction, err := s.prediction.PredictNextMonth(userID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var thisMonthTotal int64
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND date >= ?", userID, models.TransactionTypeExpense, monthStart).
		Scan(&thisMonthTotal).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if thisMonthTotal > 0 && float64(prediction.Total) > float64(thisMonthTotal)*predictionAlertRatio {
		increase := int(math.Round(float64(prediction.Total-thisMonthTotal) / float64(thisMonthTotal) * 100))
		notifications = append(notifications, models.Notification{
			Type:      models.NotificationPredictionAlert,
			Title:     "📊 חיזוי: חודש יקר מתקרב",
			Message:   fmt.Sprintf("החודש הבא צפוי להיות ב-%s - %d%% יותר מהחודש", shekels(prediction.Total), increase),
			Priority:  models.PriorityMedium,
			ActionURL: "/reports",
		})
	}

	for _, recommendation := range prediction.Recommendations {
		notifications = append(notifications, models.Notification{
			Type:      models.NotificationPredictionAlert,
			Title:     "💡 המלצה חכמה",
			Message:   recommendation.Message,
			Priority:  models.PriorityLow,
			ActionURL: "/reports",
		})
	}

	return notifications, nil
}

// checkStreakReminder nudges a user whose streak is at risk: last activity
// was yesterday and the streak is worth keeping.
func (s *notificationService) checkStreakReminder(userID uint, now time.Time) (*models.Notification, error) {
	var state models.UserGamification
	if err := s.db.Where("user_id = ?", userID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if state.LastActivityDate == nil || state.CurrentStreak <= streakReminderFloor {
		return nil, nil
	}

	yesterday := dayOf(now).AddDate(0, 0, -1)
	if !dayOf(*state.LastActivityDate).Equal(yesterday) {
		return nil, nil
	}

	return &models.Notification{
		Type:      models.NotificationStreakReminder,
		Title:     "🔥 שמור על ה-Streak שלך!",
		Message:   fmt.Sprintf("יש לך %d ימים רצופים! עדכן תנועה היום כדי לא לאבד", state.CurrentStreak),
		Priority:  models.PriorityHigh,
		ActionURL: "/transactions",
	}, nil
}

// checkGoalProgress announces milestone bands on active goals. The [m, m+5)
// band keeps a goal from re-announcing a milestone it blew past long ago.
func (s *notificationService) checkGoalProgress(userID uint) ([]models.Notification, error) {
	var goals []models.SavingsGoal
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	for _, goal := range goals {
		progress := goal.Progress()
		for _, milestone := range goalMilestones {
			if progress >= milestone && progress < milestone+5 {
				priority := models.PriorityLow
				if milestone == 100 {
					priority = models.PriorityHigh
				}
				notifications = append(notifications, models.Notification{
					Type:      models.NotificationGoalProgress,
					Title:     fmt.Sprintf("🎯 %d%% להשגת היעד!", int(milestone)),
					Message:   fmt.Sprintf("השגת %d%% מיעד \"%s\" - כל הכבוד!", int(milestone), goal.Name),
					Priority:  priority,
					ActionURL: "/goals",
				})
			}
		}
	}

	return notifications, nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *notificationService) ListNotifications(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notifications, nil
}

// MarkRead marks a notification as read.
func (s *notificationService) MarkRead(userID, notificationID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// Delete removes a notification.
func (s *notificationService) Delete(userID, notificationID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
