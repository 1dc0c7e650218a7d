// Package config loads server configuration from the environment.
package config

import (
	"os"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// Server settings
	Port           string
	AllowedOrigins []string

	// Storage: "memory" for local development, "firestore" otherwise.
	UseMemoryStore bool
	GCPProject     string

	// CronSecret guards the scheduler endpoints. Empty disables the check,
	// which is only acceptable with the memory store.
	CronSecret string

	// CategorizerURL is the categorization oracle endpoint. Empty disables
	// categorization; imports fall back to Other/Uncategorized.
	CategorizerURL string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8111",
		AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	if mem := os.Getenv("USE_MEMORY_STORE"); mem == "true" || mem == "1" || os.Getenv("ENV") == "local" {
		cfg.UseMemoryStore = true
	}
	cfg.GCPProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	cfg.CronSecret = os.Getenv("CRON_SECRET")
	cfg.CategorizerURL = os.Getenv("CATEGORIZER_URL")

	return cfg
}
