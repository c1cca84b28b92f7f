package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestInsightsFlow_CategorizeAgainstSystemCategories(t *testing.T) {
	app := setupApp(t)
	app.seedSystemCategories(t)
	token, _, _ := app.registerUser(t, "insights@test.com", "password123")

	rec := app.request("POST", "/api/v1/insights/categorize",
		`{"merchant_name":"שופרסל דיל","amount":15000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	suggestion := parseJSON(t, rec)["suggestion"].(map[string]interface{})
	if suggestion["method"] != "rules" {
		t.Errorf("expected rules method, got %v", suggestion["method"])
	}
	if suggestion["category_id"].(float64) == 0 {
		t.Error("expected a resolved category id")
	}

	// Unknown merchant with no history yields no suggestion.
	rec = app.request("POST", "/api/v1/insights/categorize",
		`{"merchant_name":"עסק עלום","amount":7777}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["suggestion"] != nil {
		t.Error("expected null suggestion for an unknown merchant")
	}
}

func TestInsightsFlow_HistoryBeatsRules(t *testing.T) {
	app := setupApp(t)
	app.seedSystemCategories(t)
	token, _, _ := app.registerUser(t, "history@test.com", "password123")
	customCat := app.createCategory(t, token, "קניות משרד", "expense")

	// The user has already filed this merchant under a custom category.
	now := time.Now().Format(time.RFC3339)
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":9000,"merchant_name":"שופרסל","category_id":%.0f,"date":%q}`,
			customCat, now))

	rec := app.request("POST", "/api/v1/insights/categorize",
		`{"merchant_name":"שופרסל","amount":9500}`, token)
	suggestion := parseJSON(t, rec)["suggestion"].(map[string]interface{})
	if suggestion["method"] != "historical" {
		t.Errorf("expected historical method to win, got %v", suggestion["method"])
	}
	if suggestion["category_id"].(float64) != customCat {
		t.Errorf("expected the user's own category %v, got %v", customCat, suggestion["category_id"])
	}
}

func TestInsightsFlow_AutoCategorize(t *testing.T) {
	app := setupApp(t)
	app.seedSystemCategories(t)
	token, _, _ := app.registerUser(t, "autocat@test.com", "password123")

	now := time.Now().Format(time.RFC3339)
	txID := app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":18000,"merchant_name":"רמי לוי","date":%q}`, now))
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":5000,"description":"פנגו חניה","date":%q}`, now))
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":3333,"description":"סתם משהו","date":%q}`, now))

	rec := app.request("POST", "/api/v1/insights/auto-categorize", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if updated := parseJSON(t, rec)["updated"].(float64); updated != 2 {
		t.Errorf("expected 2 transactions categorized, got %.0f", updated)
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", token)
	transaction := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if transaction["category_id"] == nil {
		t.Error("expected the supermarket transaction to be categorized")
	}
}

func TestInsightsFlow_Prediction(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "predict@test.com", "password123")
	catID := app.createCategory(t, token, "מזון", "expense")

	// Three months of stable spending.
	for m := 1; m <= 3; m++ {
		date := time.Now().AddDate(0, -m, 0).Format(time.RFC3339)
		app.createTransaction(t, token,
			fmt.Sprintf(`{"type":"expense","amount":30000,"category_id":%.0f,"description":"קניות","date":%q}`, catID, date))
	}

	rec := app.request("GET", "/api/v1/insights/prediction", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	prediction := parseJSON(t, rec)["prediction"].(map[string]interface{})
	if prediction["total"].(float64) <= 0 {
		t.Errorf("expected a positive predicted total, got %v", prediction["total"])
	}
}
