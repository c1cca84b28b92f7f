package services

// Achievement is a static catalog entry. Condition is evaluated against a
// UserStats snapshot; earned achievements are persisted to user_achievements
// and total points are always derived from that ledger.
type Achievement struct {
	ID          string `json:"id"`
	NameHe      string `json:"name_he"`
	NameEn      string `json:"name_en"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
	Category    string `json:"category"`

	Condition func(UserStats) bool `json:"-"`
}

// achievements is the full catalog, in award-evaluation order.
var achievements = []Achievement{
	{
		ID: "first_transaction", NameHe: "צעד ראשון", NameEn: "First Step",
		Description: "רשמת את התנועה הראשונה שלך", Icon: "🎯", Points: 10, Category: "beginner",
		Condition: func(s UserStats) bool { return s.TotalTransactions >= 1 },
	},
	{
		ID: "first_budget", NameHe: "תקציבן חכם", NameEn: "Smart Budgeter",
		Description: "הגדרת את התקציב הראשון", Icon: "📊", Points: 20, Category: "beginner",
		Condition: func(s UserStats) bool { return s.TotalBudgets >= 1 },
	},
	{
		ID: "first_goal", NameHe: "בעל חזון", NameEn: "Visionary",
		Description: "הגדרת יעד חיסכון ראשון", Icon: "🎯", Points: 15, Category: "beginner",
		Condition: func(s UserStats) bool { return s.TotalGoals >= 1 },
	},
	{
		ID: "streak_7", NameHe: "שבוע מושלם", NameEn: "Perfect Week",
		Description: "7 ימים רצופים של עדכון תנועות", Icon: "🔥", Points: 50, Category: "streak",
		Condition: func(s UserStats) bool { return s.CurrentStreak >= 7 },
	},
	{
		ID: "streak_30", NameHe: "חודש זהב", NameEn: "Golden Month",
		Description: "30 ימים רצופים של ניהול פיננסי", Icon: "👑", Points: 200, Category: "streak",
		Condition: func(s UserStats) bool { return s.CurrentStreak >= 30 },
	},
	{
		ID: "streak_100", NameHe: "אגדה חיה", NameEn: "Living Legend",
		Description: "100 ימים רצופים!", Icon: "🏆", Points: 1000, Category: "streak",
		Condition: func(s UserStats) bool { return s.CurrentStreak >= 100 },
	},
	{
		ID: "budget_month_1", NameHe: "משמעת ראשונה", NameEn: "First Discipline",
		Description: "חודש שלם בתוך התקציב", Icon: "💪", Points: 100, Category: "budget",
		Condition: func(s UserStats) bool { return s.MonthsInBudget >= 1 },
	},
	{
		ID: "budget_month_3", NameHe: "מקצוען", NameEn: "Professional",
		Description: "3 חודשים רצופים בתוך התקציב", Icon: "⭐", Points: 300, Category: "budget",
		Condition: func(s UserStats) bool { return s.MonthsInBudget >= 3 },
	},
	{
		ID: "saved_1k", NameHe: "חוסך מתחיל", NameEn: "Beginner Saver",
		Description: "חסכת ₪1,000", Icon: "💰", Points: 50, Category: "savings",
		Condition: func(s UserStats) bool { return s.TotalSaved >= 100_000 },
	},
	{
		ID: "saved_10k", NameHe: "חוסך מקצועי", NameEn: "Pro Saver",
		Description: "חסכת ₪10,000", Icon: "💎", Points: 200, Category: "savings",
		Condition: func(s UserStats) bool { return s.TotalSaved >= 1_000_000 },
	},
	{
		ID: "saved_50k", NameHe: "אלוף החיסכון", NameEn: "Savings Champion",
		Description: "חסכת ₪50,000!", Icon: "🏅", Points: 1000, Category: "savings",
		Condition: func(s UserStats) bool { return s.TotalSaved >= 5_000_000 },
	},
	{
		ID: "goal_completed_1", NameHe: "מגשים חלומות", NameEn: "Dream Achiever",
		Description: "השגת יעד חיסכון ראשון", Icon: "🌟", Points: 100, Category: "goals",
		Condition: func(s UserStats) bool { return s.GoalsCompleted >= 1 },
	},
	{
		ID: "goal_completed_5", NameHe: "מכונת הישגים", NameEn: "Achievement Machine",
		Description: "השגת 5 יעדי חיסכון", Icon: "🚀", Points: 500, Category: "goals",
		Condition: func(s UserStats) bool { return s.GoalsCompleted >= 5 },
	},
	{
		ID: "organized_100", NameHe: "מסודר", NameEn: "Organized",
		Description: "קיטלגת 100 תנועות", Icon: "📁", Points: 30, Category: "organization",
		Condition: func(s UserStats) bool { return s.CategorizedTransactions >= 100 },
	},
	{
		ID: "maaser_paid", NameHe: "נותן בסתר", NameEn: "Secret Giver",
		Description: "שילמת מעשר לראשונה", Icon: "✡️", Points: 50, Category: "maaser",
		Condition: func(s UserStats) bool { return s.MaaserPayments >= 1 },
	},
	{
		ID: "maaser_year", NameHe: "צדקה כל השנה", NameEn: "Year of Charity",
		Description: "12 חודשים של מעשר", Icon: "💝", Points: 500, Category: "maaser",
		Condition: func(s UserStats) bool { return s.MaaserMonths >= 12 },
	},
	{
		ID: "early_bird", NameHe: "ציפור מוקדמת", NameEn: "Early Bird",
		Description: "עדכנת תנועה לפני 8 בבוקר", Icon: "🌅", Points: 10, Category: "special",
		Condition: func(s UserStats) bool { return s.EarlyBirdDays >= 1 },
	},
	{
		ID: "night_owl", NameHe: "ינשוף לילה", NameEn: "Night Owl",
		Description: "עדכנת תנועה אחרי חצות", Icon: "🦉", Points: 10, Category: "special",
		Condition: func(s UserStats) bool { return s.NightOwlDays >= 1 },
	},
	{
		ID: "weekend_warrior", NameHe: "גיבור סוף השבוע", NameEn: "Weekend Warrior",
		Description: "עדכנת בשבת או ביום ראשון", Icon: "🏖️", Points: 15, Category: "special",
		Condition: func(s UserStats) bool { return s.WeekendDays >= 1 },
	},
}

// Achievements returns the full static catalog.
func Achievements() []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// AchievementByID looks up a catalog entry, or nil when unknown.
func AchievementByID(id string) *Achievement {
	for i := range achievements {
		if achievements[i].ID == id {
			return &achievements[i]
		}
	}
	return nil
}

// Level is a named points tier.
type Level struct {
	Level     int    `json:"level"`
	NameHe    string `json:"name_he"`
	NameEn    string `json:"name_en"`
	MinPoints int    `json:"min_points"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
}

// levels is ordered ascending by MinPoints.
var levels = []Level{
	{Level: 1, NameHe: "מתחיל", NameEn: "Beginner", MinPoints: 0, Icon: "🌱", Color: "#9CA3AF"},
	{Level: 2, NameHe: "חוסך", NameEn: "Saver", MinPoints: 100, Icon: "🌿", Color: "#10B981"},
	{Level: 3, NameHe: "מנהל", NameEn: "Manager", MinPoints: 300, Icon: "🌳", Color: "#3B82F6"},
	{Level: 4, NameHe: "מומחה", NameEn: "Expert", MinPoints: 600, Icon: "🌲", Color: "#8B5CF6"},
	{Level: 5, NameHe: "מאסטר", NameEn: "Master", MinPoints: 1000, Icon: "🎖️", Color: "#F59E0B"},
	{Level: 6, NameHe: "אגדה", NameEn: "Legend", MinPoints: 2000, Icon: "👑", Color: "#EF4444"},
	{Level: 7, NameHe: "אלוהים", NameEn: "God", MinPoints: 5000, Icon: "⚡", Color: "#EC4899"},
}

// Levels returns the full level table.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// GetLevelByPoints returns the highest level whose threshold the points meet.
func GetLevelByPoints(points int) Level {
	for i := len(levels) - 1; i >= 0; i-- {
		if points >= levels[i].MinPoints {
			return levels[i]
		}
	}
	return levels[0]
}

// ProgressToNextLevel returns the percentage of the way from the current
// level's threshold to the next. At the top level it returns 100.
func ProgressToNextLevel(points int) float64 {
	current := GetLevelByPoints(points)

	var next *Level
	for i := range levels {
		if levels[i].MinPoints > points {
			next = &levels[i]
			break
		}
	}
	if next == nil {
		return 100
	}

	pointsInLevel := float64(points - current.MinPoints)
	pointsNeeded := float64(next.MinPoints - current.MinPoints)
	return pointsInLevel / pointsNeeded * 100
}
