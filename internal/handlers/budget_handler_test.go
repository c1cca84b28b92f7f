package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "agorot/internal/errors"
	"agorot/internal/models"
	"agorot/internal/pagination"
	"agorot/internal/services"
)

type mockBudgetService struct {
	createFn   func(userID, categoryID uint, name string, amount int64, period models.BudgetPeriod, alertThreshold int, startDate time.Time, endDate *time.Time) (*models.Budget, error)
	listFn     func(userID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	getFn      func(userID, budgetID uint) (*models.Budget, error)
	updateFn   func(userID, budgetID uint, name string, amount *int64, period *models.BudgetPeriod, alertThreshold *int, endDate *time.Time) (*models.Budget, error)
	deleteFn   func(userID, budgetID uint) error
	progressFn func(userID, budgetID uint) (*services.BudgetProgress, error)
}

func (m *mockBudgetService) CreateBudget(userID, categoryID uint, name string, amount int64, period models.BudgetPeriod, alertThreshold int, startDate time.Time, endDate *time.Time) (*models.Budget, error) {
	if m.createFn != nil {
		return m.createFn(userID, categoryID, name, amount, period, alertThreshold, startDate, endDate)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, isActive, period)
	}
	return &pagination.PageResponse[models.Budget]{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	if m.getFn != nil {
		return m.getFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID uint, name string, amount *int64, period *models.BudgetPeriod, alertThreshold *int, endDate *time.Time) (*models.Budget, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, budgetID, name, amount, period, alertThreshold, endDate)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetProgress(userID, budgetID uint) (*services.BudgetProgress, error) {
	if m.progressFn != nil {
		return m.progressFn(userID, budgetID)
	}
	return &services.BudgetProgress{}, nil
}

func setupBudgetRouter(svc services.BudgetServicer) *gin.Engine {
	handler := NewBudgetHandler(svc, &mockAuditService{})
	r := gin.New()
	r.Use(injectUserID(1))
	r.POST("/budgets", handler.CreateBudget)
	r.GET("/budgets", handler.GetBudgets)
	r.GET("/budgets/:id", handler.GetBudget)
	r.PUT("/budgets/:id", handler.UpdateBudget)
	r.DELETE("/budgets/:id", handler.DeleteBudget)
	r.GET("/budgets/:id/progress", handler.GetBudgetProgress)
	return r
}

func TestBudgetHandler_Create(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			createFn: func(userID, categoryID uint, name string, amount int64, period models.BudgetPeriod, alertThreshold int, _ time.Time, _ *time.Time) (*models.Budget, error) {
				return &models.Budget{
					Base:           models.Base{ID: 1},
					UserID:         userID,
					CategoryID:     categoryID,
					Name:           name,
					Amount:         amount,
					Period:         period,
					AlertThreshold: alertThreshold,
				}, nil
			},
		}
		r := setupBudgetRouter(svc)

		rec := doRequest(r, "POST", "/budgets",
			`{"category_id":2,"name":"מזון","amount":100000,"period":"monthly","alert_threshold":75}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["period"] != "monthly" {
			t.Errorf("expected monthly period, got %v", budget["period"])
		}
	})

	t.Run("returns 400 on invalid period", func(t *testing.T) {
		r := setupBudgetRouter(&mockBudgetService{})

		rec := doRequest(r, "POST", "/budgets",
			`{"category_id":2,"name":"מזון","amount":100000,"period":"weekly"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		r := setupBudgetRouter(&mockBudgetService{})

		rec := doRequest(r, "POST", "/budgets", `{"name":"מזון","amount":100000,"period":"monthly"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var gotActive *bool
		var gotPeriod *models.BudgetPeriod
		svc := &mockBudgetService{
			listFn: func(_ uint, _ pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
				gotActive = isActive
				gotPeriod = period
				return &pagination.PageResponse[models.Budget]{}, nil
			},
		}
		r := setupBudgetRouter(svc)

		rec := doRequest(r, "GET", "/budgets?is_active=true&period=monthly", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotActive == nil || !*gotActive {
			t.Error("expected is_active filter true")
		}
		if gotPeriod == nil || *gotPeriod != models.BudgetPeriodMonthly {
			t.Error("expected monthly period filter")
		}
	})

	t.Run("returns 400 on bad is_active", func(t *testing.T) {
		r := setupBudgetRouter(&mockBudgetService{})

		rec := doRequest(r, "GET", "/budgets?is_active=maybe", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_Progress(t *testing.T) {
	t.Run("returns 200 with progress", func(t *testing.T) {
		svc := &mockBudgetService{
			progressFn: func(_, budgetID uint) (*services.BudgetProgress, error) {
				return &services.BudgetProgress{
					BudgetID:   budgetID,
					Budgeted:   100_000,
					Spent:      40_000,
					Remaining:  60_000,
					Percentage: 40,
				}, nil
			},
		}
		r := setupBudgetRouter(svc)

		rec := doRequest(r, "GET", "/budgets/3/progress", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		progress := result["progress"].(map[string]interface{})
		if progress["percentage"].(float64) != 40 {
			t.Errorf("expected percentage 40, got %v", progress["percentage"])
		}
	})

	t.Run("returns 404 when budget missing", func(t *testing.T) {
		svc := &mockBudgetService{
			progressFn: func(_, _ uint) (*services.BudgetProgress, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(svc)

		rec := doRequest(r, "GET", "/budgets/99/progress", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_Update(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			updateFn: func(_, budgetID uint, _ string, amount *int64, _ *models.BudgetPeriod, _ *int, _ *time.Time) (*models.Budget, error) {
				budget := &models.Budget{Base: models.Base{ID: budgetID}}
				if amount != nil {
					budget.Amount = *amount
				}
				return budget, nil
			},
		}
		r := setupBudgetRouter(svc)

		rec := doRequest(r, "PUT", "/budgets/3", `{"amount":150000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on invalid period", func(t *testing.T) {
		r := setupBudgetRouter(&mockBudgetService{})

		rec := doRequest(r, "PUT", "/budgets/3", `{"period":"daily"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
