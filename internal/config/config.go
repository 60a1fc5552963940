package config

import (
	"os"
	"strconv"

	"sentinel/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StorageConfig holds upload storage settings
type StorageConfig struct {
	UploadDir     string
	MaxUploadSize int64
}

// PipelineConfig holds analysis pipeline settings
type PipelineConfig struct {
	SampleLines    int   // lines inspected while sniffing CSV structure
	SimulationRows int   // row cap for the model simulation sample
	Seed           int64 // seed for every randomized step, fixed for reproducibility
	Workers        int   // concurrent dataset analyses
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Storage: StorageConfig{
			UploadDir:     getEnvOrDefault("UPLOAD_DIR", "./uploads"),
			MaxUploadSize: getEnvInt64OrDefault("MAX_UPLOAD_SIZE", 256<<20),
		},
		Pipeline: PipelineConfig{
			SampleLines:    getEnvIntOrDefault("SAMPLE_LINES", 2000),
			SimulationRows: getEnvIntOrDefault("SIMULATION_ROWS", 100_000),
			Seed:           42,
			Workers:        getEnvIntOrDefault("ANALYSIS_WORKERS", 2),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Storage.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Pipeline.Workers < 1 {
		return errors.ConfigInvalid("ANALYSIS_WORKERS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
