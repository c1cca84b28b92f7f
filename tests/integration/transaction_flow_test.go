package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func (app *testApp) createCategory(t *testing.T, token, nameHe, categoryType string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/categories",
		fmt.Sprintf(`{"name_he":%q,"type":%q}`, nameHe, categoryType), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating category, got %d: %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["category"].(map[string]interface{})["id"].(float64)
}

func (app *testApp) createTransaction(t *testing.T, token, body string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating transaction, got %d: %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(float64)
}

func TestTransactionFlow_CreateAndFilter(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "tx@test.com", "password123")
	catID := app.createCategory(t, token, "מזון", "expense")

	now := time.Now().Format(time.RFC3339)
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":12000,"description":"שופרסל","category_id":%.0f,"date":%q,"tags":["groceries"]}`, catID, now))
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":4500,"description":"קפה","date":%q}`, now))
	app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"income","amount":1000000,"description":"משכורת","is_maaser_relevant":true,"date":%q}`, now))

	// All three.
	rec := app.request("GET", "/api/v1/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 3 {
		t.Errorf("expected 3 transactions, got %.0f", total)
	}

	// Expenses only.
	rec = app.request("GET", "/api/v1/transactions?type=expense", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 expenses, got %.0f", total)
	}

	// Amount floor.
	rec = app.request("GET", "/api/v1/transactions?min_amount=10000", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 transactions >= 10000, got %.0f", total)
	}

	// Tag filter.
	rec = app.request("GET", "/api/v1/transactions?tag=groceries", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 tagged transaction, got %.0f", total)
	}

	// Uncategorized only.
	rec = app.request("GET", "/api/v1/transactions?uncategorized=true", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 2 {
		t.Errorf("expected 2 uncategorized transactions, got %.0f", total)
	}
}

func TestTransactionFlow_SetCategoryTypeMismatch(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "mismatch@test.com", "password123")
	incomeCat := app.createCategory(t, token, "משכורת", "income")

	now := time.Now().Format(time.RFC3339)
	txID := app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":5000,"description":"חניה","date":%q}`, now))

	rec := app.request("PUT", fmt.Sprintf("/api/v1/transactions/%.0f/category", txID),
		fmt.Sprintf(`{"category_id":%.0f}`, incomeCat), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for type mismatch, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "CATEGORY_TYPE_MISMATCH" {
		t.Errorf("expected CATEGORY_TYPE_MISMATCH, got %v", errObj["code"])
	}
}

func TestTransactionFlow_UpdateAndDelete(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "txcrud@test.com", "password123")

	now := time.Now().Format(time.RFC3339)
	txID := app.createTransaction(t, token,
		fmt.Sprintf(`{"type":"expense","amount":8000,"description":"דלק","date":%q}`, now))

	rec := app.request("PUT", fmt.Sprintf("/api/v1/transactions/%.0f", txID),
		`{"amount":9500,"description":"דלק מלא"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if updated["amount"].(float64) != 9500 {
		t.Errorf("expected amount 9500, got %v", updated["amount"])
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestTransactionFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	tokenA, _, _ := app.registerUser(t, "owner@test.com", "password123")
	tokenB, _, _ := app.registerUser(t, "other@test.com", "password123")

	now := time.Now().Format(time.RFC3339)
	txID := app.createTransaction(t, tokenA,
		fmt.Sprintf(`{"type":"expense","amount":3000,"description":"פרטי","date":%q}`, now))

	rec := app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's transaction, got %d", rec.Code)
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting another user's transaction, got %d", rec.Code)
	}
}
