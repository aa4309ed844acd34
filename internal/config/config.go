// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	DataDir       string // Directory holding the SQLite database (always absolute)
	DBDriver      string // sqlite or postgres
	DatabaseURL   string // Postgres DSN, or an explicit SQLite path
	EODHDToken    string
	EODHDBaseURL  string
	QuoteTimeout  time.Duration
	MetricsConfig string // Optional YAML file overriding the embedded gauge bands
	LogLevel      string
	Port          int
	DevMode       bool
	DefaultUserID int64 // Single-user deployment: every row belongs to this user

	// S3-compatible backup target; backups are disabled without a bucket
	BackupBucket          string
	BackupEndpoint        string
	BackupRegion          string
	BackupAccessKeyID     string
	BackupSecretAccessKey string
	BackupSchedule        string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		EODHDToken:    getEnv("EODHD_API_TOKEN", ""),
		EODHDBaseURL:  getEnv("EODHD_BASE_URL", "https://eodhd.com/api/real-time"),
		QuoteTimeout:  getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),
		MetricsConfig: getEnv("METRICS_CONFIG", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnvAsInt("PORT", 3000),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		DefaultUserID: int64(getEnvAsInt("DEFAULT_USER_ID", 1)),

		BackupBucket:          getEnv("BACKUP_S3_BUCKET", ""),
		BackupEndpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		BackupRegion:          getEnv("BACKUP_S3_REGION", "auto"),
		BackupAccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		BackupSecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		BackupSchedule:        getEnv("BACKUP_SCHEDULE", "0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverSQLite {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverSQLite, DriverPostgres)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.QuoteTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT must be positive")
	}
	if c.DefaultUserID <= 0 {
		return fmt.Errorf("DEFAULT_USER_ID must be positive")
	}

	if c.BackupEnabled() && c.DBDriver != DriverSQLite {
		return fmt.Errorf("BACKUP_S3_BUCKET requires DB_DRIVER=%s", DriverSQLite)
	}

	return nil
}

// BackupEnabled reports whether database backups are configured
func (c *Config) BackupEnabled() bool {
	return c.BackupBucket != ""
}

// DatabasePath returns the SQLite database file, honouring an explicit DATABASE_URL.
func (c *Config) DatabasePath() string {
	if c.DBDriver == DriverSQLite && c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return filepath.Join(c.DataDir, "vmi_primary.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
