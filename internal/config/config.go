// Package config reads generator settings from the environment. CLI flags
// override whatever is set here.
package config

import (
	"os"
	"strconv"

	"planforge/internal/errors"
)

// Config represents the complete generator configuration
type Config struct {
	Paths    PathConfig
	Strict   bool
	LogLevel string
}

// PathConfig holds file system paths
type PathConfig struct {
	AssetsDir string
	OutputDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Paths: PathConfig{
			AssetsDir: getEnvOrDefault("PLANFORGE_ASSETS_DIR", "assets"),
			OutputDir: getEnvOrDefault("PLANFORGE_OUTPUT_DIR", "output/contracts"),
		},
		Strict:   getEnvBoolOrDefault("PLANFORGE_STRICT", true),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if cfg.Paths.AssetsDir == "" {
		return nil, errors.New(errors.CodeConfigInvalid, "PLANFORGE_ASSETS_DIR must not be empty")
	}
	if cfg.Paths.OutputDir == "" {
		return nil, errors.New(errors.CodeConfigInvalid, "PLANFORGE_OUTPUT_DIR must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
