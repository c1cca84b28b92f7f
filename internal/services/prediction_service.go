package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
)

// Recommendation thresholds, in agorot.
const (
	restaurantSpendThreshold = 200_000
	restaurantSpendTarget    = 150_000
	subscriptionCountLimit   = 5
	subscriptionSavings      = 10_000
)

// predictionService implements next-month spend prediction over the user's
// trailing twelve months of transactions.
type predictionService struct {
	db *gorm.DB
}

// NewPredictionService creates a new PredictionServicer.
func NewPredictionService(db *gorm.DB) PredictionServicer {
	return &predictionService{db: db}
}

// PredictNextMonth builds the full prediction: weighted total, per-category
// estimates, outlier detection, and templated recommendations.
func (s *predictionService) PredictNextMonth(userID uint) (*Prediction, error) {
	transactions, err := s.lastTwelveMonths(userID)
	if err != nil {
		return nil, err
	}

	byCategory, err := s.predictByCategory(userID, transactions)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Total:           predictTotal(transactions),
		ByCategory:      byCategory,
		UnusualExpenses: detectUnusualExpenses(transactions),
		Recommendations: generateRecommendations(transactions),
	}, nil
}

// lastTwelveMonths loads the user's transactions from the trailing 365 days,
// oldest first.
func (s *predictionService) lastTwelveMonths(userID uint) ([]models.Transaction, error) {
	since := time.Now().AddDate(0, 0, -365)

	var transactions []models.Transaction
	err := s.db.Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// predictTotal computes a recency-weighted average of monthly expense totals
// and applies a seasonality multiplier.
func predictTotal(transactions []models.Transaction) int64 {
	monthlyTotals := make(map[string]int64)
	for _, t := range transactions {
		if t.Type != models.TransactionTypeExpense {
			continue
		}
		month := t.Date.Format("2006-01")
		monthlyTotals[month] += t.Amount
	}
	if len(monthlyTotals) == 0 {
		return 0
	}

	months := make([]string, 0, len(monthlyTotals))
	for month := range monthlyTotals {
		months = append(months, month)
	}
	sort.Strings(months)

	// Linear recency weights: the most recent month counts the most.
	weighted := decimal.Zero
	weightSum := decimal.Zero
	for i, month := range months {
		weight := decimal.NewFromInt(int64(i + 1))
		weighted = weighted.Add(decimal.NewFromInt(monthlyTotals[month]).Mul(weight))
		weightSum = weightSum.Add(weight)
	}

	predicted := weighted.Div(weightSum)

	totals := make([]int64, len(months))
	for i, month := range months {
		totals[i] = monthlyTotals[month]
	}
	seasonality := detectSeasonality(totals)

	return predicted.Mul(seasonality).Round(0).IntPart()
}

// detectSeasonality compares the same month a year ago against the overall
// average. With fewer than twelve buckets there is nothing to compare.
func detectSeasonality(totals []int64) decimal.Decimal {
	if len(totals) < 12 {
		return decimal.NewFromInt(1)
	}

	lastYearSameMonth := totals[len(totals)-12]

	var sum int64
	for _, total := range totals {
		sum += total
	}
	average := float64(sum) / float64(len(totals))

	switch {
	case float64(lastYearSameMonth) > average*1.2:
		return decimal.NewFromFloat(1.15)
	case float64(lastYearSameMonth) < average*0.8:
		return decimal.NewFromFloat(0.90)
	}
	return decimal.NewFromInt(1)
}

// predictByCategory estimates next month's spend per expense category as the
// trailing three-month average, keyed by the category's Hebrew name.
func (s *predictionService) predictByCategory(userID uint, transactions []models.Transaction) (map[string]CategoryPrediction, error) {
	var categories []models.Category
	err := s.db.Where("(user_id = ? OR is_system = ?) AND type = ?", userID, true, models.CategoryTypeExpense).
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	predictions := make(map[string]CategoryPrediction, len(categories))
	for _, category := range categories {
		var categoryTransactions []models.Transaction
		for _, t := range transactions {
			if t.CategoryID != nil && *t.CategoryID == category.ID {
				categoryTransactions = append(categoryTransactions, t)
			}
		}

		if len(categoryTransactions) == 0 {
			predictions[category.NameHe] = CategoryPrediction{}
			continue
		}

		// Roughly the last three months of activity.
		recent := categoryTransactions
		if len(recent) > 90 {
			recent = recent[len(recent)-90:]
		}
		var total int64
		for _, t := range recent {
			total += t.Amount
		}

		confidence := 0.60
		if len(categoryTransactions) > 10 {
			confidence = 0.85
		}

		predictions[category.NameHe] = CategoryPrediction{
			Predicted:  decimal.NewFromInt(total).Div(decimal.NewFromInt(3)).Round(0).IntPart(),
			Confidence: confidence,
			Trend:      calculateTrend(categoryTransactions),
		}
	}

	return predictions, nil
}

// calculateTrend compares the average of the first half of the series against
// the second half. A move beyond ten percent either way breaks "stable".
func calculateTrend(transactions []models.Transaction) string {
	if len(transactions) < 6 {
		return "stable"
	}

	mid := len(transactions) / 2
	firstAvg := averageAmount(transactions[:mid])
	secondAvg := averageAmount(transactions[mid:])
	if firstAvg == 0 {
		return "stable"
	}

	change := (secondAvg - firstAvg) / firstAvg * 100
	switch {
	case change > 10:
		return "increasing"
	case change < -10:
		return "decreasing"
	}
	return "stable"
}

func averageAmount(transactions []models.Transaction) float64 {
	if len(transactions) == 0 {
		return 0
	}
	var sum int64
	for _, t := range transactions {
		sum += t.Amount
	}
	return float64(sum) / float64(len(transactions))
}

// detectUnusualExpenses returns expenses strictly above two population
// standard deviations over the mean.
func detectUnusualExpenses(transactions []models.Transaction) []models.Transaction {
	var amounts []float64
	for _, t := range transactions {
		if t.Type == models.TransactionTypeExpense {
			amounts = append(amounts, float64(t.Amount))
		}
	}
	if len(amounts) == 0 {
		return []models.Transaction{}
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var variance float64
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	variance /= float64(len(amounts))
	threshold := mean + 2*math.Sqrt(variance)

	unusual := []models.Transaction{}
	for _, t := range transactions {
		if t.Type == models.TransactionTypeExpense && float64(t.Amount) > threshold {
			unusual = append(unusual, t)
		}
	}
	return unusual
}

// generateRecommendations builds templated savings suggestions from obvious
// spending patterns.
func generateRecommendations(transactions []models.Transaction) []Recommendation {
	recommendations := []Recommendation{}

	var restaurantTotal int64
	for _, t := range transactions {
		if containsAny(t.Description, "מסעדה", "קפה") {
			restaurantTotal += t.Amount
		}
	}
	if restaurantTotal > restaurantSpendThreshold {
		savings := restaurantTotal - restaurantSpendTarget
		recommendations = append(recommendations, Recommendation{
			Type:     "reduce_spending",
			Category: "מסעדות",
			Message: fmt.Sprintf("הוצאת %s על מסעדות וקפה החודש. נסה להפחית ל-%s וחסוך %s!",
				shekels(restaurantTotal), shekels(restaurantSpendTarget), shekels(savings)),
			PotentialSavings: savings,
		})
	}

	subscriptions := 0
	for _, t := range transactions {
		if containsAny(t.Description, "נטפליקס", "ספוטיפיי") {
			subscriptions++
		}
	}
	if subscriptions > subscriptionCountLimit {
		recommendations = append(recommendations, Recommendation{
			Type:             "cancel_subscriptions",
			Message:          fmt.Sprintf("יש לך %d מנויים פעילים. בדוק אילו באמת בשימוש!", subscriptions),
			PotentialSavings: subscriptionSavings,
		})
	}

	return recommendations
}

func containsAny(text string, keywords ...string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// shekels renders an agorot amount as a shekel string for messages.
func shekels(agorot int64) string {
	return "₪" + decimal.NewFromInt(agorot).Div(decimal.NewFromInt(100)).String()
}
