package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestEngagementFlow_FirstTransactionAchievement(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "gamify@test.com", "password123")

	now := time.Now().Format(time.RFC3339)
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":5000,"description":"קפה","date":%q}`, now))

	rec := app.request("POST", "/api/v1/gamification/check", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	earned := parseJSON(t, rec)["earned"].([]interface{})
	found := false
	for _, e := range earned {
		if e.(map[string]interface{})["id"] == "first_transaction" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected first_transaction to be earned, got %v", earned)
	}

	// A second check is idempotent.
	rec = app.request("POST", "/api/v1/gamification/check", "", token)
	earned = parseJSON(t, rec)["earned"].([]interface{})
	if len(earned) != 0 {
		t.Errorf("expected no new achievements on re-check, got %d", len(earned))
	}

	// Points show up in the summary.
	rec = app.request("GET", "/api/v1/gamification/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_points"].(float64) <= 0 {
		t.Errorf("expected positive points, got %v", summary["total_points"])
	}
}

func TestEngagementFlow_BudgetNotificationsDeduplicate(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "notify@test.com", "password123")
	catID := app.createCategory(t, token, "בילויים", "expense")

	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"name":"בילויים","amount":10000,"period":"monthly","alert_threshold":50,"start_date":%q}`,
			catID, startDate.Format(time.RFC3339)), token)

	// Blow past the budget.
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":12000,"category_id":%.0f,"description":"מסעדה","date":%q}`,
			catID, now.Format(time.RFC3339)))

	rec := app.request("POST", "/api/v1/notifications/check", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	created := parseJSON(t, rec)["notifications"].([]interface{})
	exceeded := false
	for _, n := range created {
		if n.(map[string]interface{})["type"] == "budget_exceeded" {
			exceeded = true
		}
	}
	if !exceeded {
		t.Errorf("expected a budget_exceeded notification, got %v", created)
	}

	// Same day, same check: deduplicated.
	rec = app.request("POST", "/api/v1/notifications/check", "", token)
	created = parseJSON(t, rec)["notifications"].([]interface{})
	for _, n := range created {
		if n.(map[string]interface{})["type"] == "budget_exceeded" {
			t.Error("budget_exceeded must not be created twice on the same day")
		}
	}

	// Mark the alert read, then delete it.
	rec = app.request("GET", "/api/v1/notifications", "", token)
	list := parseJSON(t, rec)["notifications"].([]interface{})
	if len(list) == 0 {
		t.Fatal("expected at least one stored notification")
	}
	notificationID := list[0].(map[string]interface{})["id"].(float64)

	rec = app.request("PUT", fmt.Sprintf("/api/v1/notifications/%.0f/read", notificationID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/notifications/%.0f", notificationID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
