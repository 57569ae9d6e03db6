package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the process configuration. Everything comes from environment
// variables; messaging provider credentials are operator data and live in the
// database instead.
type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// API auth: bcrypt hash of the access token. Empty disables auth.
	APITokenHash string

	// CORS
	AllowedOrigins []string

	// Email fallback (Resend)
	ResendKey string
	EmailFrom string

	// Reminder dispatch
	DispatchTimeout     time.Duration
	DispatchMaxInFlight int

	// Environment name, "production" tightens startup checks
	Env string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("ACADEMIA_DB_PATH", "./data/academia.db"),

		APITokenHash: getEnv("ACADEMIA_API_TOKEN_HASH", ""),

		ResendKey: getEnv("ACADEMIA_RESEND_KEY", ""),
		EmailFrom: getEnv("ACADEMIA_EMAIL_FROM", "Academia <noreply@academia.local>"),

		DispatchTimeout:     getEnvDuration("ACADEMIA_DISPATCH_TIMEOUT", 15*time.Second),
		DispatchMaxInFlight: getEnvInt("ACADEMIA_DISPATCH_MAX_IN_FLIGHT", 4),

		Env: getEnv("ACADEMIA_ENV", "development"),
	}
	if origins := getEnv("ACADEMIA_ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate database path and ensure its directory exists
	if c.SQLiteDBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate token hash shape if set
	if c.APITokenHash != "" && !strings.HasPrefix(c.APITokenHash, "$2") {
		errors = append(errors, "ACADEMIA_API_TOKEN_HASH must be a bcrypt hash")
	}
	if c.Env == "production" && c.APITokenHash == "" {
		errors = append(errors, "ACADEMIA_API_TOKEN_HASH is required in production")
	}

	// Validate dispatch tuning
	if c.DispatchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid dispatch timeout %v: must be at least 1 second", c.DispatchTimeout))
	} else if c.DispatchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid dispatch timeout %v: must be at most 5 minutes", c.DispatchTimeout))
	}
	if c.DispatchMaxInFlight < 1 {
		errors = append(errors, fmt.Sprintf("invalid dispatch concurrency %d: must be at least 1", c.DispatchMaxInFlight))
	} else if c.DispatchMaxInFlight > 64 {
		errors = append(errors, fmt.Sprintf("invalid dispatch concurrency %d: must be at most 64", c.DispatchMaxInFlight))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
