// Package config loads server configuration from environment variables
// and optional runtime tuning from a watched YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all server configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string
	LogLevel      string

	// Authentication
	ServiceToken string

	// Storage configuration
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string

	// Local development fallback: when Supabase is not configured the
	// server runs against an in-memory store rooted at this URL.
	LocalStorageBaseURL string

	// Runtime tuning
	TuningFile string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		ServiceToken: getEnv("SERVICE_TOKEN", ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "handwriting"),

		LocalStorageBaseURL: getEnv("LOCAL_STORAGE_BASE_URL", "http://localhost:8080/objects"),

		TuningFile: getEnv("TUNING_FILE", ""),

		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.ServiceToken == "" {
			return fmt.Errorf("SERVICE_TOKEN is required in production")
		}
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required in production")
		}
	}
	return nil
}

// UseSupabaseStorage reports whether a real storage backend is
// configured.
func (c *Config) UseSupabaseStorage() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// getEnv gets an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
