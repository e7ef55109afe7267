package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Security SecurityConfig `yaml:"security"`
	Session  SessionConfig  `yaml:"session"`
	Insights InsightsConfig `yaml:"insights"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Type   string       `yaml:"type"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

type JWTConfig struct {
	Secret           string `yaml:"secret"`
	ExpiresIn        string `yaml:"expires_in"`
	RefreshExpiresIn string `yaml:"refresh_expires_in"`
	Issuer           string `yaml:"issuer"`
}

type SecurityConfig struct {
	BcryptCost int              `yaml:"bcrypt_cost"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	BruteForce BruteForceConfig `yaml:"brute_force"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

type BruteForceConfig struct {
	FailedLoginThreshold int    `yaml:"failed_login_threshold"`
	Window               string `yaml:"window"`
}

type SessionConfig struct {
	IdleWarningAfter string `yaml:"idle_warning_after"`
	IdleLogoutAfter  string `yaml:"idle_logout_after"`
}

type InsightsConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

var Global *Config

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	// Optional .env file for local development
	_ = godotenv.Load()

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	if jwtSecret := os.Getenv("EXPENSE_JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}

	if dbType := os.Getenv("EXPENSE_DB_TYPE"); dbType != "" {
		cfg.Database.Type = dbType
	}

	if dbPath := os.Getenv("EXPENSE_DB_PATH"); dbPath != "" {
		cfg.Database.SQLite.Path = dbPath
	}

	if mysqlHost := os.Getenv("EXPENSE_MYSQL_HOST"); mysqlHost != "" {
		cfg.Database.MySQL.Host = mysqlHost
	}

	if mysqlUser := os.Getenv("EXPENSE_MYSQL_USER"); mysqlUser != "" {
		cfg.Database.MySQL.Username = mysqlUser
	}

	if mysqlPass := os.Getenv("EXPENSE_MYSQL_PASSWORD"); mysqlPass != "" {
		cfg.Database.MySQL.Password = mysqlPass
	}

	if mysqlDB := os.Getenv("EXPENSE_MYSQL_DATABASE"); mysqlDB != "" {
		cfg.Database.MySQL.Database = mysqlDB
	}

	if apiKey := os.Getenv("EXPENSE_OPENAI_API_KEY"); apiKey != "" {
		cfg.Insights.APIKey = apiKey
	}

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		dataDir := filepath.Dir(cfg.Database.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Validate MySQL configuration if MySQL is selected
	if cfg.Database.Type == "mysql" {
		if cfg.Database.MySQL.Username == "" {
			return nil, fmt.Errorf("MySQL username is required")
		}
		if cfg.Database.MySQL.Database == "" {
			return nil, fmt.Errorf("MySQL database name is required")
		}
	}

	Global = &cfg
	return &cfg, nil
}

// BruteForceWindow returns the failed-login counting window, defaulting to 15 minutes.
func (c *Config) BruteForceWindow() time.Duration {
	d, err := time.ParseDuration(c.Security.BruteForce.Window)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// FailedLoginThreshold returns the suspicious-IP threshold, defaulting to 10.
func (c *Config) FailedLoginThreshold() int {
	if c.Security.BruteForce.FailedLoginThreshold <= 0 {
		return 10
	}
	return c.Security.BruteForce.FailedLoginThreshold
}

// IdleWarningAfter returns the quiet period before an idle-session warning,
// defaulting to 28 minutes.
func (c *Config) IdleWarningAfter() time.Duration {
	d, err := time.ParseDuration(c.Session.IdleWarningAfter)
	if err != nil || d <= 0 {
		return 28 * time.Minute
	}
	return d
}

// IdleLogoutAfter returns the quiet period before an idle session is expired,
// defaulting to 30 minutes.
func (c *Config) IdleLogoutAfter() time.Duration {
	d, err := time.ParseDuration(c.Session.IdleLogoutAfter)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}
