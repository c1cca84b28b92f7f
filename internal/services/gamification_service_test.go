package services

import (
	"testing"
	"time"

	"agorot/internal/models"
	"agorot/internal/testutil"
)

func TestRecordActivity(t *testing.T) {
	t.Run("first_activity_starts_streak", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.RecordActivity(user.ID, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		var state models.UserGamification
		if err := db.Where("user_id = ?", user.ID).First(&state).Error; err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		if state.CurrentStreak != 1 || state.LongestStreak != 1 {
			t.Errorf("expected streak 1/1, got %d/%d", state.CurrentStreak, state.LongestStreak)
		}
	})

	t.Run("consecutive_day_extends", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		yesterday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		testutil.CreateTestGamification(t, db, user.ID, 4, &yesterday)

		err := svc.RecordActivity(user.ID, yesterday.AddDate(0, 0, 1))
		testutil.AssertNoError(t, err)

		var state models.UserGamification
		db.Where("user_id = ?", user.ID).First(&state)
		if state.CurrentStreak != 5 {
			t.Errorf("expected streak 5, got %d", state.CurrentStreak)
		}
		if state.LongestStreak != 5 {
			t.Errorf("expected longest streak 5, got %d", state.LongestStreak)
		}
	})

	t.Run("gap_resets_streak", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		lastWeek := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
		testutil.CreateTestGamification(t, db, user.ID, 12, &lastWeek)

		err := svc.RecordActivity(user.ID, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		var state models.UserGamification
		db.Where("user_id = ?", user.ID).First(&state)
		if state.CurrentStreak != 1 {
			t.Errorf("expected streak reset to 1, got %d", state.CurrentStreak)
		}
		if state.LongestStreak != 12 {
			t.Errorf("expected longest streak preserved at 12, got %d", state.LongestStreak)
		}
	})

	t.Run("same_day_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)

		morning := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
		testutil.AssertNoError(t, svc.RecordActivity(user.ID, morning))
		testutil.AssertNoError(t, svc.RecordActivity(user.ID, morning.Add(10*time.Hour)))

		var state models.UserGamification
		db.Where("user_id = ?", user.ID).First(&state)
		if state.CurrentStreak != 1 {
			t.Errorf("expected streak 1 after same-day repeat, got %d", state.CurrentStreak)
		}
		if state.EarlyBirdDays != 1 {
			t.Errorf("expected a single early bird day, got %d", state.EarlyBirdDays)
		}
	})

	t.Run("day_type_counters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)

		// Saturday 03:00: night owl and weekend, not early bird.
		testutil.AssertNoError(t, svc.RecordActivity(user.ID, time.Date(2025, 3, 8, 3, 0, 0, 0, time.UTC)))
		// Sunday 06:30: early bird and weekend.
		testutil.AssertNoError(t, svc.RecordActivity(user.ID, time.Date(2025, 3, 9, 6, 30, 0, 0, time.UTC)))
		// Monday 12:00: neither.
		testutil.AssertNoError(t, svc.RecordActivity(user.ID, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))

		var state models.UserGamification
		db.Where("user_id = ?", user.ID).First(&state)
		if state.EarlyBirdDays != 1 {
			t.Errorf("expected 1 early bird day, got %d", state.EarlyBirdDays)
		}
		if state.NightOwlDays != 1 {
			t.Errorf("expected 1 night owl day, got %d", state.NightOwlDays)
		}
		if state.WeekendDays != 2 {
			t.Errorf("expected 2 weekend days, got %d", state.WeekendDays)
		}
		if state.CurrentStreak != 3 {
			t.Errorf("expected streak 3, got %d", state.CurrentStreak)
		}
	})
}

func TestCheckNewAchievements(t *testing.T) {
	t.Run("first_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 5000)

		earned, err := svc.CheckNewAchievements(user.ID)
		testutil.AssertNoError(t, err)

		found := false
		for _, a := range earned {
			if a.ID == "first_transaction" {
				found = true
			}
		}
		if !found {
			t.Error("expected first_transaction to be awarded")
		}

		points, err := svc.TotalPoints(user.ID)
		testutil.AssertNoError(t, err)
		if points != totalPointsOf(earned) {
			t.Errorf("expected ledger total %d, got %d", totalPointsOf(earned), points)
		}
	})

	t.Run("second_check_awards_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 5000)
		testutil.CreateTestBudget(t, db, user.ID, testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense).ID, 100000)

		first, err := svc.CheckNewAchievements(user.ID)
		testutil.AssertNoError(t, err)
		if len(first) == 0 {
			t.Fatal("expected at least one achievement on the first check")
		}
		pointsBefore, err := svc.TotalPoints(user.ID)
		testutil.AssertNoError(t, err)

		second, err := svc.CheckNewAchievements(user.ID)
		testutil.AssertNoError(t, err)
		if len(second) != 0 {
			t.Errorf("expected no new achievements on the second check, got %d", len(second))
		}

		pointsAfter, err := svc.TotalPoints(user.ID)
		testutil.AssertNoError(t, err)
		if pointsAfter != pointsBefore {
			t.Errorf("expected points unchanged at %d, got %d", pointsBefore, pointsAfter)
		}
	})

	t.Run("streak_thresholds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		now := time.Now()
		testutil.CreateTestGamification(t, db, user.ID, 30, &now)

		earned, err := svc.CheckNewAchievements(user.ID)
		testutil.AssertNoError(t, err)

		got := map[string]bool{}
		for _, a := range earned {
			got[a.ID] = true
		}
		if !got["streak_7"] || !got["streak_30"] {
			t.Errorf("expected streak_7 and streak_30, got %v", got)
		}
		if got["streak_100"] {
			t.Error("streak_100 should not be awarded at streak 30")
		}
	})

	t.Run("maaser_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestMaaserPayment(t, db, user.ID, 10000, time.Now())

		earned, err := svc.CheckNewAchievements(user.ID)
		testutil.AssertNoError(t, err)

		found := false
		for _, a := range earned {
			if a.ID == "maaser_paid" {
				found = true
			}
		}
		if !found {
			t.Error("expected maaser_paid to be awarded")
		}
	})

	t.Run("goal_completed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGamificationService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestGoal(t, db, user.ID, 50000, 50000)

		earned, err := svc.CheckNewAchievements(user.ID)
		testutil.AssertNoError(t, err)

		got := map[string]bool{}
		for _, a := range earned {
			got[a.ID] = true
		}
		if !got["first_goal"] || !got["goal_completed_1"] {
			t.Errorf("expected first_goal and goal_completed_1, got %v", got)
		}
	})
}

func TestGetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGamificationService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 5000)

	_, err := svc.CheckNewAchievements(user.ID)
	testutil.AssertNoError(t, err)

	summary, err := svc.GetSummary(user.ID)
	testutil.AssertNoError(t, err)

	if summary.TotalPoints == 0 {
		t.Error("expected points after an award")
	}
	if summary.Level.Level != GetLevelByPoints(summary.TotalPoints).Level {
		t.Errorf("level does not match points %d", summary.TotalPoints)
	}
	if len(summary.Earned) == 0 {
		t.Error("expected earned achievements in the summary")
	}
}

func TestLevels(t *testing.T) {
	t.Run("boundaries", func(t *testing.T) {
		cases := []struct {
			points int
			level  int
		}{
			{0, 1},
			{99, 1},
			{100, 2},
			{299, 2},
			{300, 3},
			{5000, 7},
			{999999, 7},
		}
		for _, c := range cases {
			if got := GetLevelByPoints(c.points); got.Level != c.level {
				t.Errorf("points %d: expected level %d, got %d", c.points, c.level, got.Level)
			}
		}
	})

	t.Run("progress", func(t *testing.T) {
		// Halfway from level 1 (0) to level 2 (100).
		if got := ProgressToNextLevel(50); got != 50 {
			t.Errorf("expected progress 50, got %v", got)
		}
		// At the top there is nothing left to climb.
		if got := ProgressToNextLevel(10000); got != 100 {
			t.Errorf("expected progress 100 at top level, got %v", got)
		}
	})
}

func totalPointsOf(earned []Achievement) int {
	var sum int
	for _, a := range earned {
		sum += a.Points
	}
	return sum
}
