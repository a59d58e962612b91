package config

import (
	"os"
	"strconv"

	"casesim/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Simulation SimulationConfig
	Export     ExportConfig
}

// DatabaseConfig holds database connection settings. URL may be empty, in
// which case the binaries fall back to the built-in demo configuration.
type DatabaseConfig struct {
	URL     string
	ModelID string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	OpsPort string
	GinMode string
}

// SimulationConfig holds engine defaults
type SimulationConfig struct {
	DefaultDrawCount int
	MaxDrawCount     int
}

// ExportConfig holds workbook export settings
type ExportConfig struct {
	OutputPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			ModelID: os.Getenv("MODEL_ID"),
		},
		Server: ServerConfig{
			Port:    envOr("PORT", "8080"),
			OpsPort: envOr("OPS_PORT", "8081"),
			GinMode: envOr("GIN_MODE", "release"),
		},
		Simulation: SimulationConfig{
			DefaultDrawCount: 1000,
			MaxDrawCount:     100000,
		},
		Export: ExportConfig{
			OutputPath: envOr("EXPORT_PATH", "casesim_results.xlsx"),
		},
	}

	if v := os.Getenv("DEFAULT_DRAW_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.New("INVALID_CONFIG", "DEFAULT_DRAW_COUNT must be a positive integer")
		}
		cfg.Simulation.DefaultDrawCount = n
	}
	if v := os.Getenv("MAX_DRAW_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.New("INVALID_CONFIG", "MAX_DRAW_COUNT must be a positive integer")
		}
		cfg.Simulation.MaxDrawCount = n
	}
	if cfg.Simulation.DefaultDrawCount > cfg.Simulation.MaxDrawCount {
		return nil, errors.New("INVALID_CONFIG", "DEFAULT_DRAW_COUNT exceeds MAX_DRAW_COUNT")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
