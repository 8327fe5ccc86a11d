package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"godesign/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig
	Draw     DrawConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// DrawConfig holds defaults applied to every draw
type DrawConfig struct {
	// Seed is nil when DESIGN_SEED is unset, meaning fresh randomness.
	Seed          *int64
	Workers       int
	MaxReplicates int
	Output        string

	// DataDir confines population tables named by designs posted over
	// HTTP. Empty disables such tables.
	DataDir string
}

// DatabaseConfig holds the optional draw archive connection
type DatabaseConfig struct {
	URL    string
	Driver string
}

// Enabled reports whether a draw archive is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Load reads configuration from environment variables and validates it.
// Callers wanting .env support load it with godotenv first.
func Load() (*Config, error) {
	config := &Config{
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
		Database: DatabaseConfig{
			URL:    os.Getenv("DATABASE_URL"),
			Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
	}

	drawConfig, err := loadDrawConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load draw configuration")
	}
	config.Draw = *drawConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDrawConfig() (*DrawConfig, error) {
	cfg := &DrawConfig{
		Output:  getEnvOrDefault("DESIGN_OUTPUT", "csv"),
		DataDir: os.Getenv("DESIGN_DATA_DIR"),
	}

	if value := os.Getenv("DESIGN_SEED"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("DESIGN_SEED must be an integer, got %q", value))
		}
		cfg.Seed = &seed
	}

	workers, err := getEnvInt("DESIGN_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	cfg.Workers = workers

	maxReplicates, err := getEnvInt("DESIGN_MAX_REPLICATES", 1000)
	if err != nil {
		return nil, err
	}
	cfg.MaxReplicates = maxReplicates

	return cfg, nil
}

func validateConfig(config *Config) error {
	if config.Draw.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("DESIGN_WORKERS must be at least 1, got %d", config.Draw.Workers))
	}
	if config.Draw.MaxReplicates < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("DESIGN_MAX_REPLICATES must be at least 1, got %d", config.Draw.MaxReplicates))
	}
	switch config.Draw.Output {
	case "csv", "json", "xlsx":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("DESIGN_OUTPUT must be csv, json or xlsx, got %q", config.Draw.Output))
	}
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("DATABASE_DRIVER must be postgres or sqlite, got %q", config.Database.Driver))
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

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}
