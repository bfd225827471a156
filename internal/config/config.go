package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL     string // Consolidated DB Connection URL
	RedisURL        string
	ContahubBaseURL string // vendor back-office base URL
	ProcessorURL    string // downstream raw-data processor endpoint
	AnalyzerURL     string // downstream insight service endpoint
	WebhookURL      string // notification webhook, best effort only
}

// LoadConfig reads configuration from environment variables (.env file)
func LoadConfig() (*Config, error) {
	// Load .env file. In production, env variables are often set directly.
	if err := godotenv.Load(); err != nil {
		// Don't fail if .env is not present, just log it
		// log.Printf("Warning: .env file not found, reading from environment")
	}

	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		ContahubBaseURL: getEnv("CONTAHUB_BASE_URL", "https://sp.contahub.com"),
		ProcessorURL:    getEnv("PROCESSOR_URL", ""),
		AnalyzerURL:     getEnv("ANALYZER_URL", ""),
		WebhookURL:      getEnv("WEBHOOK_URL", ""),
	}, nil
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
