// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/aristath/quintile/internal/modules/allocation"
)

// Config holds application configuration
type Config struct {
	LogLevel   string `default:"info" validate:"oneof=debug info warn error"`
	LogPretty  bool
	Allocation AllocationConfig
}

// AllocationConfig holds the default weight allocation parameters
type AllocationConfig struct {
	K             float64 `default:"1" validate:"gte=1,lte=2147483647"`
	Cutoff        float64 `validate:"gte=0"`
	MaxPositions  int     `default:"100" validate:"gte=0"`
	ZeroSumPolicy string  `default:"leave" validate:"oneof=leave nan error"`
}

// Options converts the configuration into allocation options
func (a AllocationConfig) Options() allocation.Options {
	return allocation.Options{
		K:            a.K,
		Cutoff:       a.Cutoff,
		MaxPositions: a.MaxPositions,
		ZeroSum:      allocation.ZeroSumPolicy(a.ZeroSumPolicy),
	}
}

var validate = validator.New()

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", cfg.LogPretty)
	cfg.Allocation.K = getEnvAsFloat("ALLOCATION_K", cfg.Allocation.K)
	cfg.Allocation.Cutoff = getEnvAsFloat("ALLOCATION_CUTOFF", cfg.Allocation.Cutoff)
	cfg.Allocation.MaxPositions = getEnvAsInt("ALLOCATION_MAX_POSITIONS", cfg.Allocation.MaxPositions)
	cfg.Allocation.ZeroSumPolicy = strings.ToLower(getEnv("ALLOCATION_ZERO_SUM_POLICY", cfg.Allocation.ZeroSumPolicy))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fe := validationErrors[0]
		return fmt.Errorf("invalid configuration: %s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("invalid configuration: %w", err)
}

// Helper functions
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
