package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Schedule ScheduleConfig
	Sweep    SweepConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// ScheduleConfig drives late detection and clock normalization.
type ScheduleConfig struct {
	WorkStart    string
	GraceMinutes int
	Timezone     string
}

// SweepConfig controls the expired-break auto-close job.
type SweepConfig struct {
	Interval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hikari-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Schedule configuration
	graceMinutes, err := strconv.Atoi(getEnv("SCHEDULE_GRACE_MINUTES", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_GRACE_MINUTES: %w", err)
	}

	config.Schedule = ScheduleConfig{
		WorkStart:    getEnv("SCHEDULE_WORK_START", "09:00"),
		GraceMinutes: graceMinutes,
		Timezone:     getEnv("SCHEDULE_TIMEZONE", "Asia/Tokyo"),
	}

	// Sweep configuration
	sweepInterval, err := time.ParseDuration(getEnv("BREAK_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid BREAK_SWEEP_INTERVAL: %w", err)
	}

	config.Sweep = SweepConfig{
		Interval: sweepInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE: %w", err)
	}
	if _, err := time.Parse("15:04", c.Schedule.WorkStart); err != nil {
		return fmt.Errorf("invalid SCHEDULE_WORK_START: %w", err)
	}
	if c.Schedule.GraceMinutes < 0 {
		return fmt.Errorf("SCHEDULE_GRACE_MINUTES must not be negative")
	}
	if c.Sweep.Interval < time.Second {
		return fmt.Errorf("BREAK_SWEEP_INTERVAL is too short")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
