package services

import "strings"

// CategoryRule maps merchant keywords to a canonical category name.
type CategoryRule struct {
	Key          string
	Keywords     []string
	CategoryName string
}

// categoryRules is the keyword decision list for the rule-based stage. Order
// matters: the first rule with a matching keyword wins, so more specific
// rules must come before broader ones.
var categoryRules = []CategoryRule{
	{
		Key:          "food",
		Keywords:     []string{"סופר", "שופרסל", "רמי לוי", "יינות ביתן", "מזון", "מכולת", "ירקות", "שוק", "טיב טעם", "מגה", "Victory", "חצי חינם"},
		CategoryName: "מזון - סופרמרקט",
	},
	{
		Key:          "restaurants",
		Keywords:     []string{"מסעדה", "קפה", "בית קפה", "פיצה", "המבורגר", "סושי", "וולט", "טנא", "משלוח", "מקדונלד", "בורגר", "קפה גרג"},
		CategoryName: "מזון - מסעדות",
	},
	{
		Key:          "bakery",
		Keywords:     []string{"מאפייה", "לחם", "חלה", "עוגה", "אנג'ל"},
		CategoryName: "מזון - מאפייה",
	},
	{
		Key:          "fuel",
		Keywords:     []string{"דלק", "דור אלון", "סונול", "פז", "דלק מוטור", "תדלוק"},
		CategoryName: "תחבורה - דלק",
	},
	{
		Key:          "parking",
		Keywords:     []string{"חניה", "חניון", "פנגו", "סלופארק"},
		CategoryName: "תחבורה - חניה",
	},
	{
		Key:          "public_transport",
		Keywords:     []string{"רב קו", "רכבת", "אוטובוס", "מונית", "גט טקסי", "אפ מונית"},
		CategoryName: "תחבורה - תחבורה ציבורית",
	},
	{
		Key:          "pharmacy",
		Keywords:     []string{"סופר פארם", "ניו פארם", "בית מרקחת", "תרופות"},
		CategoryName: "בריאות - תרופות",
	},
	{
		Key:          "medical",
		Keywords:     []string{"קופת חולים", "רופא", "מכבי", "כללית", "מאוחדת", "לאומית", "מרפאה"},
		CategoryName: "בריאות - רופאים",
	},
	{
		Key:          "electricity",
		Keywords:     []string{"חברת חשמל", "חשמל", "חח\"י"},
		CategoryName: "דיור - חשמל",
	},
	{
		Key:          "water",
		Keywords:     []string{"מים", "תאגיד מים", "מי"},
		CategoryName: "דיור - מים",
	},
	{
		Key:          "internet",
		Keywords:     []string{"בזק", "הוט", "סלקום", "פרטנר", "אינטרנט", "סלולר"},
		CategoryName: "דיור - אינטרנט",
	},
	{
		Key:          "entertainment",
		Keywords:     []string{"קולנוע", "סינמה", "יס פלנט", "נטפליקס", "ספוטיפיי", "ערוצים"},
		CategoryName: "בילויים - קולנוע ובידור",
	},
	{
		Key:          "sports",
		Keywords:     []string{"חדר כושר", "ספורט", "הולמס פלייס", "פיטנס"},
		CategoryName: "בילויים - ספורט",
	},
	{
		Key:          "clothing",
		Keywords:     []string{"זארה", "H&M", "קסטרו", "פוקס", "גולף", "ביגוד", "נעליים"},
		CategoryName: "ביגוד - ביגוד",
	},
	{
		Key:          "online",
		Keywords:     []string{"אמזון", "אלי אקספרס", "ebay", "PAYPAL", "קניות אונליין"},
		CategoryName: "אחר - קניות אונליין",
	},
	{
		Key:          "kids",
		Keywords:     []string{"גן", "משפחתון", "חוגים", "צעצועים"},
		CategoryName: "חינוך - גן",
	},
}

// matchCategoryRule returns the first rule whose keyword appears in the text,
// case-insensitively, or nil when none match.
func matchCategoryRule(text string) *CategoryRule {
	lower := strings.ToLower(text)
	for i := range categoryRules {
		for _, keyword := range categoryRules[i].Keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return &categoryRules[i]
			}
		}
	}
	return nil
}

// SystemCategoryNames returns the canonical category names the rule catalog
// resolves to, deduplicated and in rule order. Used by seeding.
func SystemCategoryNames() []string {
	seen := make(map[string]bool, len(categoryRules))
	names := make([]string, 0, len(categoryRules))
	for _, rule := range categoryRules {
		if !seen[rule.CategoryName] {
			seen[rule.CategoryName] = true
			names = append(names, rule.CategoryName)
		}
	}
	return names
}
