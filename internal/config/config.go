package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"archivesync/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port                string
	DBPath              string
	ArchiveURL          string
	SimilarityThreshold float64
	Concurrency         int
	AggregateHour       int
	LogLevel            string
	LogFormat           string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		DBPath:              getEnv("DB_PATH", constants.DefaultDBPath),
		ArchiveURL:          getEnv("ARCHIVE_URL", constants.DefaultArchiveURL),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", constants.DefaultSimilarityThreshold),
		Concurrency:         getEnvInt("CONCURRENCY", constants.DefaultConcurrency),
		AggregateHour:       getEnvInt("AGGREGATE_HOUR", constants.DefaultAggregateHour),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.ArchiveURL == "" {
		errors = append(errors, "ARCHIVE_URL cannot be empty")
	} else if _, err := url.Parse(c.ArchiveURL); err != nil {
		errors = append(errors, fmt.Sprintf("ARCHIVE_URL is not a valid URL: %s", c.ArchiveURL))
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		errors = append(errors, fmt.Sprintf("SIMILARITY_THRESHOLD must be in (0, 1], got: %v", c.SimilarityThreshold))
	}

	if c.Concurrency < 1 {
		errors = append(errors, fmt.Sprintf("CONCURRENCY must be at least 1, got: %d", c.Concurrency))
	}

	if c.AggregateHour < 0 || c.AggregateHour > 23 {
		errors = append(errors, fmt.Sprintf("AGGREGATE_HOUR must be between 0 and 23, got: %d", c.AggregateHour))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
