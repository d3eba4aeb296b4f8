package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal container images
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string
	AutoMigrate bool

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Calendar used to decide "today" for due dates and sweeps
	Timezone string

	// Pricing
	PriceLookbackMonths int

	// Sweep schedule
	OverdueSweepHour int
	PricingSweepHour int
	MidMonthSweepDay int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		AutoMigrate:         getEnvAsBool("AUTO_MIGRATE", false),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:      getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		Timezone:            getEnv("TIMEZONE", "America/Argentina/Buenos_Aires"),
		PriceLookbackMonths: getEnvAsInt("PRICE_LOOKBACK_MONTHS", 3),
		OverdueSweepHour:    getEnvAsInt("OVERDUE_SWEEP_HOUR", 1),
		PricingSweepHour:    getEnvAsInt("PRICING_SWEEP_HOUR", 6),
		MidMonthSweepDay:    getEnvAsInt("MID_MONTH_SWEEP_DAY", 16),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required values and ranges
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.PriceLookbackMonths < 0 {
		return fmt.Errorf("PRICE_LOOKBACK_MONTHS must not be negative")
	}
	if c.OverdueSweepHour < 0 || c.OverdueSweepHour > 23 || c.PricingSweepHour < 0 || c.PricingSweepHour > 23 {
		return fmt.Errorf("sweep hours must be between 0 and 23")
	}
	// the 10th to 15th window must be closed before the sweep runs
	if c.MidMonthSweepDay < 16 || c.MidMonthSweepDay > 28 {
		return fmt.Errorf("MID_MONTH_SWEEP_DAY must be between 16 and 28")
	}
	return nil
}

// Location returns the configured time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
