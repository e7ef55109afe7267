package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"github.com/stretchr/testify/require"
)

// setupTestDB initializes a throwaway sqlite database for a test
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	testDBPath := fmt.Sprintf("%s/expense_test_%d.db", os.TempDir(), time.Now().UnixNano())

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

// createTestUser registers a user directly through the auth service
func createTestUser(t *testing.T, authService *AuthService, email string) *models.User {
	t.Helper()
	user, err := authService.Register(email, "Test User", "Passw0rd!")
	require.NoError(t, err)
	return user
}
