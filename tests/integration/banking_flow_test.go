package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

func (app *testApp) connectBank(t *testing.T, token string) (connectionID float64) {
	t.Helper()

	rec := app.request("POST", "/api/v1/banking/connections", `{"provider_code":"LEUMI"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 initiating connection, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	state := result["oauth_state"].(string)
	connectionID = result["connection"].(map[string]interface{})["id"].(float64)

	// The provider redirects back with the state and an authorization code.
	rec = app.request("GET",
		fmt.Sprintf("/api/v1/banking/callback?state=%s&code=consent-code", url.QueryEscape(state)), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from callback, got %d: %s", rec.Code, rec.Body.String())
	}
	connection := parseJSON(t, rec)["connection"].(map[string]interface{})
	if connection["status"] != "active" {
		t.Fatalf("expected active connection after callback, got %v", connection["status"])
	}
	return connectionID
}

func TestBankingFlow_ConnectSyncAndHistory(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "bank@test.com", "password123")

	connectionID := app.connectBank(t, token)
	if app.Pepper.ExchangeCalls.Load() != 1 {
		t.Errorf("expected 1 token exchange, got %d", app.Pepper.ExchangeCalls.Load())
	}

	// Tokens never leak through the API.
	rec := app.request("GET", "/api/v1/banking/connections", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	connections := parseJSON(t, rec)["connections"].([]interface{})
	if len(connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(connections))
	}
	first := connections[0].(map[string]interface{})
	if _, leaked := first["access_token"]; leaked {
		t.Error("access token must not appear in list responses")
	}

	// Two sync runs land in history, newest first.
	for i := 0; i < 2; i++ {
		rec = app.request("POST", fmt.Sprintf("/api/v1/banking/connections/%.0f/sync", connectionID), "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("sync %d: expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
		run := parseJSON(t, rec)["sync"].(map[string]interface{})
		if run["status"] != "completed" {
			t.Errorf("expected completed sync, got %v", run["status"])
		}
		if run["batch_id"].(string) == "" {
			t.Error("expected a batch id on the sync run")
		}
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/banking/connections/%.0f/history", connectionID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	history := parseJSON(t, rec)["history"].([]interface{})
	if len(history) != 2 {
		t.Errorf("expected 2 history rows, got %d", len(history))
	}
}

func TestBankingFlow_CallbackWithBadState(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/banking/callback?state=forged&code=x", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for forged state, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBankingFlow_StateCannotBeReplayed(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "replay@test.com", "password123")

	rec := app.request("POST", "/api/v1/banking/connections", `{"provider_code":"PEPPER"}`, token)
	state := parseJSON(t, rec)["oauth_state"].(string)

	rec = app.request("GET",
		fmt.Sprintf("/api/v1/banking/callback?state=%s&code=c1", url.QueryEscape(state)), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from first callback, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET",
		fmt.Sprintf("/api/v1/banking/callback?state=%s&code=c2", url.QueryEscape(state)), "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 replaying a consumed state, got %d", rec.Code)
	}
}

func TestBankingFlow_ExchangeFailureMarksConnection(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "bankfail@test.com", "password123")

	rec := app.request("POST", "/api/v1/banking/connections", `{"provider_code":"HAPOALIM"}`, token)
	result := parseJSON(t, rec)
	state := result["oauth_state"].(string)
	connectionID := result["connection"].(map[string]interface{})["id"].(float64)

	app.Pepper.FailExchange = true
	rec = app.request("GET",
		fmt.Sprintf("/api/v1/banking/callback?state=%s&code=bad", url.QueryEscape(state)), "", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "PROVIDER_EXCHANGE_FAILED" {
		t.Errorf("expected PROVIDER_EXCHANGE_FAILED, got %v", errObj["code"])
	}

	// A failed connection cannot sync.
	rec = app.request("POST", fmt.Sprintf("/api/v1/banking/connections/%.0f/sync", connectionID), "", token)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 syncing an errored connection, got %d", rec.Code)
	}
}

func TestBankingFlow_DisconnectStopsSync(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "disconnect@test.com", "password123")
	connectionID := app.connectBank(t, token)

	rec := app.request("DELETE", fmt.Sprintf("/api/v1/banking/connections/%.0f", connectionID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/banking/connections/%.0f/sync", connectionID), "", token)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 after disconnect, got %d", rec.Code)
	}
}
