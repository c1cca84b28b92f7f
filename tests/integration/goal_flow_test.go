package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestGoalFlow_ContributionsAndWithdrawal(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "goal@test.com", "password123")

	targetDate := time.Now().AddDate(1, 0, 0).Format(time.RFC3339)
	rec := app.request("POST", "/api/v1/goals",
		fmt.Sprintf(`{"name":"חופשה","target_amount":100000,"target_date":%q}`, targetDate), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := parseJSON(t, rec)["goal"].(map[string]interface{})
	goalID := goal["id"].(float64)
	if goal["current_amount"].(float64) != 0 {
		t.Errorf("expected 0 saved initially, got %v", goal["current_amount"])
	}

	// Two deposits.
	rec = app.request("POST", fmt.Sprintf("/api/v1/goals/%.0f/contributions", goalID),
		`{"amount":30000,"note":"הפקדה"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", fmt.Sprintf("/api/v1/goals/%.0f/contributions", goalID),
		`{"amount":20000}`, token)
	goal = parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["current_amount"].(float64) != 50000 {
		t.Errorf("expected 50000 saved, got %v", goal["current_amount"])
	}

	// A withdrawal reduces the balance.
	rec = app.request("POST", fmt.Sprintf("/api/v1/goals/%.0f/contributions", goalID),
		`{"amount":-10000,"note":"משיכה"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	goal = parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["current_amount"].(float64) != 40000 {
		t.Errorf("expected 40000 after withdrawal, got %v", goal["current_amount"])
	}
}

func TestGoalFlow_CRUD(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "goalcrud@test.com", "password123")

	rec := app.request("POST", "/api/v1/goals",
		`{"name":"קרן חירום","target_amount":500000}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goalID := parseJSON(t, rec)["goal"].(map[string]interface{})["id"].(float64)

	rec = app.request("PUT", fmt.Sprintf("/api/v1/goals/%.0f", goalID),
		`{"name":"קרן חירום משפחתית","target_amount":600000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["goal"].(map[string]interface{})
	if updated["target_amount"].(float64) != 600000 {
		t.Errorf("expected target 600000, got %v", updated["target_amount"])
	}

	rec = app.request("GET", "/api/v1/goals", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 goal, got %.0f", total)
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/goals/%.0f", goalID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/goals/%.0f", goalID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
