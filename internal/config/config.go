package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	Environment string

	// Storage
	DataDir      string // diskv document store root
	DatabasePath string // SQLite credential database

	// AI gateway (OpenAI-compatible endpoint)
	GatewayBaseURL  string
	GatewayAPIKey   string
	GatewayModel    string
	GatewayTTSModel string
	GatewayRPS      float64

	// Auth
	JWTSecret string
	// AccessBypassPassword, when set, lets an operator log into any
	// account. Disabled (empty) by default; never ship it set.
	AccessBypassPassword string

	// Trial gate
	TrialDurationDays int

	// Mentor personality presets
	PersonalitiesPath string
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DataDir:      getEnv("DATA_DIR", "./data/documents"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/biocode.db"),

		GatewayBaseURL:  getEnv("GATEWAY_BASE_URL", "https://api.openai.com/v1"),
		GatewayAPIKey:   getEnv("GATEWAY_API_KEY", ""),
		GatewayModel:    getEnv("GATEWAY_MODEL", "gpt-4o"),
		GatewayTTSModel: getEnv("GATEWAY_TTS_MODEL", "tts-1"),
		GatewayRPS:      getFloatEnv("GATEWAY_RPS", 2),

		JWTSecret:            getEnv("JWT_SECRET", ""),
		AccessBypassPassword: getEnv("ACCESS_BYPASS_PASSWORD", ""),

		TrialDurationDays: getIntEnv("TRIAL_DURATION_DAYS", 90),

		PersonalitiesPath: getEnv("PERSONALITIES_PATH", "./configs/personalities.yaml"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
