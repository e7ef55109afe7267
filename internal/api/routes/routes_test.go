package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB initializes a test database
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	testDBPath := fmt.Sprintf("%s/expense_routes_test_%d.db", os.TempDir(), time.Now().UnixNano())

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: testDBPath,
			},
		},
		JWT: config.JWTConfig{
			Secret:    "test-secret-key-for-testing-only",
			ExpiresIn: "24h",
			Issuer:    "expense-test",
		},
		Security: config.SecurityConfig{
			BcryptCost: 10,
			BruteForce: config.BruteForceConfig{
				FailedLoginThreshold: 10,
				Window:               "15m",
			},
		},
	}

	err := models.InitDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if models.DB != nil {
			if sqlDB, err := models.DB.DB(); err == nil {
				sqlDB.Close()
			}
			os.Remove(testDBPath)
			models.DB = nil
		}
	})

	return cfg
}

// setupTestRouter creates a test router with routes
func setupTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, cfg)
	return r
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account and returns its bearer token
func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	w := doJSON(router, "POST", "/api/auth/register", "", map[string]any{
		"email":    email,
		"name":     "Test User",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, "POST", "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)

	t.Run("POST /api/auth/register - weak password returns policy errors", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/register", "", map[string]any{
			"email":    "weak@example.com",
			"name":     "Weak",
			"password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp struct {
			Errors []string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "password is too guessable: avoid common patterns")
	})

	token := registerAndLogin(t, router, "alice@example.com")

	t.Run("GET /api/auth/me - Success", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var user models.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("GET /api/auth/me - Unauthorized without token", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("POST /api/auth/login - wrong password", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/login", "", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("POST /api/auth/refresh - rotates tokens", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/login", "", map[string]any{
			"email":    "alice@example.com",
			"password": "Passw0rd!",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var login struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

		w = doJSON(router, "POST", "/api/auth/refresh", "", map[string]any{
			"refresh_token": login.RefreshToken,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var refreshed struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
		assert.NotEqual(t, login.Token, refreshed.Token)

		// the old refresh token is spent
		w = doJSON(router, "POST", "/api/auth/refresh", "", map[string]any{
			"refresh_token": login.RefreshToken,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("POST /api/auth/password/check - advisory result", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/password/check", token, map[string]any{
			"password": "Passw0rd!",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Score float64 `json:"score"`
			Label string  `json:"label"`
			Valid bool    `json:"valid"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, 3.5, resp.Score)
		assert.Equal(t, "Strong", resp.Label)
	})

	t.Run("GET /api/auth/activity - lists security events", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/auth/activity", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Activity []struct {
				EventType string `json:"event_type"`
			} `json:"activity"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Activity)
	})

	t.Run("POST /api/auth/logout - invalidates token", func(t *testing.T) {
		logoutToken := registerAndLogin(t, router, "logout@example.com")

		w := doJSON(router, "POST", "/api/auth/logout", logoutToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "GET", "/api/auth/me", logoutToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestIdleSessionExpiry(t *testing.T) {
	cfg := setupTestDB(t)
	cfg.Session = config.SessionConfig{
		IdleWarningAfter: "30ms",
		IdleLogoutAfter:  "60ms",
	}
	router := setupTestRouter(cfg)
	token := registerAndLogin(t, router, "idle@example.com")

	w := doJSON(router, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// go quiet past the logout threshold
	time.Sleep(200 * time.Millisecond)

	w = doJSON(router, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	models.DB.Model(&models.SecurityLog{}).
		Where("event_type = ?", models.EventSessionExpired).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)
	token := registerAndLogin(t, router, "alice@example.com")

	// default categories are seeded at registration
	w := doJSON(router, "GET", "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catResp struct {
		Categories []models.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catResp))
	require.NotEmpty(t, catResp.Categories)

	var expenseCat, incomeCat models.Category
	for _, c := range catResp.Categories {
		switch c.Kind {
		case models.KindExpense:
			if expenseCat.ID == 0 {
				expenseCat = c
			}
		case models.KindIncome:
			if incomeCat.ID == 0 {
				incomeCat = c
			}
		}
	}

	month := time.Now().Format("2006-01")
	var txID uint

	t.Run("POST /api/transactions - Success", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/transactions", token, map[string]any{
			"category_id": expenseCat.ID,
			"kind":        "expense",
			"amount":      4200,
			"note":        "groceries",
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var tx models.Transaction
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
		assert.Equal(t, int64(4200), tx.Amount)
		txID = tx.ID
	})

	t.Run("POST /api/transactions - unknown category", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/transactions", token, map[string]any{
			"category_id": 99999,
			"kind":        "expense",
			"amount":      100,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /api/transactions - filters by kind", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/transactions", token, map[string]any{
			"category_id": incomeCat.ID,
			"kind":        "income",
			"amount":      500000,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(router, "GET", "/api/transactions?kind=expense", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Transactions []models.Transaction `json:"transactions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Transactions, 1)
		assert.Equal(t, models.KindExpense, resp.Transactions[0].Kind)
	})

	t.Run("GET /api/transactions/summary - aggregates month", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/transactions/summary?month="+month, token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var summary struct {
			Income   int64 `json:"income"`
			Expenses int64 `json:"expenses"`
			Net      int64 `json:"net"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, int64(500000), summary.Income)
		assert.Equal(t, int64(4200), summary.Expenses)
		assert.Equal(t, int64(495800), summary.Net)
	})

	t.Run("PUT /api/transactions/:id - Success", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/api/transactions/%d", txID), token, map[string]any{
			"category_id": expenseCat.ID,
			"kind":        "expense",
			"amount":      5200,
			"note":        "groceries and extras",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var tx models.Transaction
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
		assert.Equal(t, int64(5200), tx.Amount)
	})

	t.Run("transactions are scoped per user", func(t *testing.T) {
		otherToken := registerAndLogin(t, router, "bob@example.com")

		w := doJSON(router, "GET", fmt.Sprintf("/api/transactions/%d", txID), otherToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(router, "DELETE", fmt.Sprintf("/api/transactions/%d", txID), otherToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DELETE /api/transactions/:id - Success", func(t *testing.T) {
		w := doJSON(router, "DELETE", fmt.Sprintf("/api/transactions/%d", txID), token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, "GET", fmt.Sprintf("/api/transactions/%d", txID), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBudgetRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)
	token := registerAndLogin(t, router, "alice@example.com")

	w := doJSON(router, "GET", "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catResp struct {
		Categories []models.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catResp))
	var expenseCat models.Category
	for _, c := range catResp.Categories {
		if c.Kind == models.KindExpense {
			expenseCat = c
			break
		}
	}

	month := time.Now().Format("2006-01")

	t.Run("PUT /api/budgets - upsert", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/budgets", token, map[string]any{
			"category_id": expenseCat.ID,
			"month":       month,
			"amount":      30000,
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// second PUT for the same scope updates in place
		w = doJSON(router, "PUT", "/api/budgets", token, map[string]any{
			"category_id": expenseCat.ID,
			"month":       month,
			"amount":      35000,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var budgets []models.Budget
		require.NoError(t, models.DB.Find(&budgets).Error)
		require.Len(t, budgets, 1)
		assert.Equal(t, int64(35000), budgets[0].Amount)
	})

	t.Run("GET /api/budgets/status - joins spending", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/transactions", token, map[string]any{
			"category_id": expenseCat.ID,
			"kind":        "expense",
			"amount":      40000,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(router, "GET", "/api/budgets/status?month="+month, token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Budgets []struct {
				Spent     int64 `json:"spent"`
				Remaining int64 `json:"remaining"`
				Over      bool  `json:"over"`
			} `json:"budgets"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Budgets, 1)
		assert.Equal(t, int64(40000), resp.Budgets[0].Spent)
		assert.Equal(t, int64(-5000), resp.Budgets[0].Remaining)
		assert.True(t, resp.Budgets[0].Over)
	})
}

func TestGoalRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)
	token := registerAndLogin(t, router, "alice@example.com")

	var goalID uint

	t.Run("POST /api/goals - Success", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/goals", token, map[string]any{
			"name":          "Emergency fund",
			"target_amount": 1000000,
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var goal models.SavingsGoal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goal))
		goalID = goal.ID
	})

	t.Run("POST /api/goals/:id/contribute - reaches target", func(t *testing.T) {
		w := doJSON(router, "POST", fmt.Sprintf("/api/goals/%d/contribute", goalID), token, map[string]any{
			"amount": 600000,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			SavedAmount int64 `json:"saved_amount"`
			Achieved    bool  `json:"achieved"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(600000), resp.SavedAmount)
		assert.False(t, resp.Achieved)

		w = doJSON(router, "POST", fmt.Sprintf("/api/goals/%d/contribute", goalID), token, map[string]any{
			"amount": 400000,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Achieved)
	})

	t.Run("POST /api/goals/:id/contribute - rejects non-positive amount", func(t *testing.T) {
		w := doJSON(router, "POST", fmt.Sprintf("/api/goals/%d/contribute", goalID), token, map[string]any{
			"amount": -5,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecurringRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)
	token := registerAndLogin(t, router, "alice@example.com")

	w := doJSON(router, "GET", "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catResp struct {
		Categories []models.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catResp))
	var expenseCat models.Category
	for _, c := range catResp.Categories {
		if c.Kind == models.KindExpense {
			expenseCat = c
			break
		}
	}

	t.Run("POST /api/recurring - Success", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/recurring", token, map[string]any{
			"category_id": expenseCat.ID,
			"kind":        "expense",
			"amount":      129900,
			"note":        "Rent",
			"schedule":    "0 9 1 * *",
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var payment models.RecurringPayment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payment))
		assert.True(t, payment.Active)
		assert.False(t, payment.NextRunAt.IsZero())
	})

	t.Run("POST /api/recurring - invalid schedule", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/recurring", token, map[string]any{
			"category_id": expenseCat.ID,
			"kind":        "expense",
			"amount":      100,
			"schedule":    "whenever",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCategoryRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)
	token := registerAndLogin(t, router, "alice@example.com")

	var catID uint

	t.Run("POST /api/categories - Success", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/categories", token, map[string]any{
			"name": "Pets",
			"kind": "expense",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var cat models.Category
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
		catID = cat.ID
	})

	t.Run("DELETE /api/categories/:id - blocked while referenced", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/transactions", token, map[string]any{
			"category_id": catID,
			"kind":        "expense",
			"amount":      1500,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(router, "DELETE", fmt.Sprintf("/api/categories/%d", catID), token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("GET /api/health - public", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
