package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
	LogLevel string         `yaml:"log_level"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	// Driver is "postgres" (default) or "sqlite" for local development.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	AccessTokenSecret string `yaml:"access_token_secret"`
}

type BookingConfig struct {
	// CalendarCacheTTL bounds how stale a cached month calendar may get.
	CalendarCacheTTL time.Duration `yaml:"calendar_cache_ttl"`
	// TrustRetrySchedule is the cron spec for recomputing renter trust rows
	// whose post-transition update failed. Empty disables the job.
	TrustRetrySchedule string `yaml:"trust_retry_schedule"`
	// MaxRecurringDays caps the range a single recurring expansion may cover.
	MaxRecurringDays int `yaml:"max_recurring_days"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "4000",
			Env:  "development",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Booking: BookingConfig{
			CalendarCacheTTL:   5 * time.Minute,
			TrustRetrySchedule: "@every 5m",
			MaxRecurringDays:   366,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE and finally environment variables.
func Load() (*Config, error) {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Env = getEnv("ENV", c.Server.Env)
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_CONNECTION_STRING", c.Database.DSN)
	c.Redis.Addr = getEnv("REDIS_URL", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Auth.AccessTokenSecret = getEnv("ACCESS_TOKEN_SECRET", c.Auth.AccessTokenSecret)
	c.Booking.CalendarCacheTTL = getEnvDuration("CALENDAR_CACHE_TTL", c.Booking.CalendarCacheTTL)
	c.Booking.TrustRetrySchedule = getEnv("TRUST_RETRY_SCHEDULE", c.Booking.TrustRetrySchedule)
	c.Booking.MaxRecurringDays = getEnvInt("MAX_RECURRING_DAYS", c.Booking.MaxRecurringDays)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
