package common

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Provider   ProviderConfig
	Rules      RulesConfig
	Extraction ExtractionConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ProviderConfig holds text-supplier configuration
type ProviderConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	Tesseract    string
	TesseractPSM int
	Lang         string
	CacheDir     string
	Timeout      time.Duration
}

// RulesConfig points at the local merchant-rule store used by the CLIs.
type RulesConfig struct {
	SQLitePath string
}

// ExtractionConfig holds pipeline knobs
type ExtractionConfig struct {
	DefaultUserID string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Provider: ProviderConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Tesseract:    getEnv("TESSERACT_BIN", "tesseract"),
			TesseractPSM: getEnvAsInt("TESSERACT_PSM", 6),
			Lang:         getEnv("OCR_LANG", "eng"),
			CacheDir:     getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			Timeout:      getEnvAsDuration("PROVIDER_TIMEOUT", 45*time.Second),
		},
		Rules: RulesConfig{
			SQLitePath: getEnv("RULES_SQLITE_PATH", "slipsafe-rules.db"),
		},
		Extraction: ExtractionConfig{
			DefaultUserID: getEnv("SLIPSAFE_USER_ID", ""),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks that at least one text supplier is usable and that the
// optional default user is a well-formed UUID.
func (c *Config) Validate() error {
	if c.Provider.GeminiAPIKey == "" && c.Provider.Tesseract == "" {
		return NewAppError("CONFIG_ERROR", "either GEMINI_API_KEY or TESSERACT_BIN is required", ErrInvalidInput)
	}
	if c.Extraction.DefaultUserID != "" {
		if _, err := uuid.Parse(c.Extraction.DefaultUserID); err != nil {
			return NewAppError("CONFIG_ERROR", "SLIPSAFE_USER_ID must be a UUID", ErrInvalidInput)
		}
	}
	return nil
}
