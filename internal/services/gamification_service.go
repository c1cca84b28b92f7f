package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
)

// Day-type hour bands for activity counters.
const (
	earlyBirdFromHour = 5
	earlyBirdToHour   = 8
	nightOwlToHour    = 5
)

// gamificationService implements the achievement engine. Total points are
// always derived from the user_achievements ledger, never stored, so the
// unique index on (user_id, achievement_id) makes double awards impossible.
type gamificationService struct {
	db *gorm.DB
}

// NewGamificationService creates a new GamificationServicer.
func NewGamificationService(db *gorm.DB) GamificationServicer {
	return &gamificationService{db: db}
}

// RecordActivity updates the user's streak and day-type counters. The streak
// extends when the previous activity was yesterday, resets when older, and
// is untouched on repeat activity within the same day.
func (s *gamificationService) RecordActivity(userID uint, at time.Time) error {
	state, err := s.getOrCreateState(userID)
	if err != nil {
		return err
	}

	today := dayOf(at)
	if state.LastActivityDate != nil && dayOf(*state.LastActivityDate).Equal(today) {
		return nil
	}

	switch {
	case state.LastActivityDate != nil && dayOf(*state.LastActivityDate).Equal(today.AddDate(0, 0, -1)):
		state.CurrentStreak++
	default:
		state.CurrentStreak = 1
	}
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}

	hour := at.Hour()
	if hour >= earlyBirdFromHour && hour < earlyBirdToHour {
		state.EarlyBirdDays++
	}
	if hour < nightOwlToHour {
		state.NightOwlDays++
	}
	if weekday := at.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		state.WeekendDays++
	}

	state.LastActivityDate = &today
	if err := s.db.Save(state).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CheckNewAchievements evaluates the catalog against the user's current stats
// and persists anything newly earned. Returns only the achievements awarded
// in this call.
func (s *gamificationService) CheckNewAchievements(userID uint) ([]Achievement, error) {
	stats, err := s.getUserStats(userID)
	if err != nil {
		return nil, err
	}

	earned, err := s.earnedIDs(userID)
	if err != nil {
		return nil, err
	}

	newAchievements := []Achievement{}
	for _, achievement := range achievements {
		if earned[achievement.ID] {
			continue
		}
		if !achievement.Condition(*stats) {
			continue
		}

		record := &models.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			EarnedAt:      time.Now(),
			Points:        achievement.Points,
		}
		// Concurrent checks race to the same award; the unique index plus
		// DO NOTHING means exactly one wins and RowsAffected tells us which.
		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
		if result.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected > 0 {
			newAchievements = append(newAchievements, achievement)
		}
	}

	return newAchievements, nil
}

// TotalPoints sums the user's achievement ledger.
func (s *gamificationService) TotalPoints(userID uint) (int, error) {
	var points int
	err := s.db.Model(&models.UserAchievement{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&points).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return points, nil
}

// GetSummary returns the user's full gamification view.
func (s *gamificationService) GetSummary(userID uint) (*GamificationSummary, error) {
	state, err := s.getOrCreateState(userID)
	if err != nil {
		return nil, err
	}

	points, err := s.TotalPoints(userID)
	if err != nil {
		return nil, err
	}

	var earned []models.UserAchievement
	if err := s.db.Where("user_id = ?", userID).Order("earned_at DESC").Find(&earned).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &GamificationSummary{
		TotalPoints:         points,
		Level:               GetLevelByPoints(points),
		ProgressToNextLevel: ProgressToNextLevel(points),
		State:               *state,
		Earned:              earned,
	}, nil
}

// getOrCreateState loads the user's gamification row, creating it on first use.
func (s *gamificationService) getOrCreateState(userID uint) (*models.UserGamification, error) {
	var state models.UserGamification
	err := s.db.Where("user_id = ?", userID).First(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	state = models.UserGamification{UserID: userID}
	if createErr := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error; createErr != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, createErr)
	}
	// Re-read in case a concurrent create won the conflict.
	if err := s.db.Where("user_id = ?", userID).First(&state).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &state, nil
}

// earnedIDs returns the set of achievement IDs the user already holds.
func (s *gamificationService) earnedIDs(userID uint) (map[string]bool, error) {
	var records []models.UserAchievement
	if err := s.db.Select("achievement_id").Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	earned := make(map[string]bool, len(records))
	for _, record := range records {
		earned[record.AchievementID] = true
	}
	return earned, nil
}

// getUserStats assembles the snapshot achievement predicates run against.
func (s *gamificationService) getUserStats(userID uint) (*UserStats, error) {
	stats := &UserStats{}

	var totalTransactions, categorized int64
	if err := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&totalTransactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Transaction{}).Where("user_id = ? AND category_id IS NOT NULL", userID).Count(&categorized).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.TotalTransactions = int(totalTransactions)
	stats.CategorizedTransactions = int(categorized)

	var totalBudgets int64
	if err := s.db.Model(&models.Budget{}).Where("user_id = ?", userID).Count(&totalBudgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.TotalBudgets = int(totalBudgets)

	var goals []models.SavingsGoal
	if err := s.db.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.TotalGoals = len(goals)
	for _, goal := range goals {
		if goal.TargetAmount > 0 && goal.CurrentAmount >= goal.TargetAmount {
			stats.GoalsCompleted++
		}
	}

	var totalIncome, totalExpense int64
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeIncome).
		Scan(&totalIncome).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Scan(&totalExpense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if saved := totalIncome - totalExpense; saved > 0 {
		stats.TotalSaved = saved
	}

	var payments []models.MaaserPayment
	if err := s.db.Select("payment_date").Where("user_id = ?", userID).Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats.MaaserPayments = len(payments)
	months := make(map[string]bool)
	for _, payment := range payments {
		months[payment.PaymentDate.Format("2006-01")] = true
	}
	stats.MaaserMonths = len(months)

	state, err := s.getOrCreateState(userID)
	if err != nil {
		return nil, err
	}
	stats.CurrentStreak = state.CurrentStreak
	stats.MonthsInBudget = state.MonthsInBudget
	stats.EarlyBirdDays = state.EarlyBirdDays
	stats.NightOwlDays = state.NightOwlDays
	stats.WeekendDays = state.WeekendDays

	points, err := s.TotalPoints(userID)
	if err != nil {
		return nil, err
	}
	stats.TotalPoints = points

	return stats, nil
}

// dayOf truncates a time to its calendar date.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
