package openai

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the OpenAI-compatible endpoint configuration. Model names
// and sampling parameters are per-request (llm.Request); this covers the
// connection itself.
type Config struct {
	APIKey     string // key sent to the endpoint; local daemons accept any value
	BaseURL    string // e.g. http://localhost:8080/v1
	MaxRetries int    // transient-failure retries per call (default 2, max 3)
}

// NewConfigFromEnv creates Config from environment variables.
// Expected env vars: LLM_API_KEY, LLM_BASE_URL, LLM_MAX_RETRIES.
func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		APIKey:     getEnvOrDefault("LLM_API_KEY", "local"),
		BaseURL:    getEnvOrDefault("LLM_BASE_URL", "http://localhost:8080/v1"),
		MaxRetries: getEnvIntOrDefault("LLM_MAX_RETRIES", 2),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL cannot be empty")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 3 {
		return fmt.Errorf("LLM_MAX_RETRIES must be between 0 and 3, got %d", c.MaxRetries)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
