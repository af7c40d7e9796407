// Package config provides configuration management for the tipbase server.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Auth      AuthConfig
	Tips      TipsConfig
	Feed      FeedConfig
	Monitor   MonitorConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig holds key-value store configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// PostgresConfig holds the user directory database configuration.
// An empty Host disables the directory endpoints.
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// AuthConfig holds demo authentication configuration
type AuthConfig struct {
	DefaultTokens   int
	TipsterEmail    string
	TipsterPassword string
}

// TipsConfig holds tip generation configuration
type TipsConfig struct {
	Cost        int // tokens deducted per generation
	MaxStored   int // collection cap, oldest evicted
	MinFixtures int
	MaxFixtures int
	Horizon     time.Duration // fixtures fall within now..now+Horizon
}

// FeedConfig holds notification feed configuration
type FeedConfig struct {
	MaxStored int
}

// MonitorConfig holds results monitor configuration
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:           getEnv("REDIS_HOST", "localhost"),
			Port:           getEnv("REDIS_PORT", "6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvAsInt("REDIS_DB", 0),
			MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
		},
		Postgres: PostgresConfig{
			Host:           getEnv("POSTGRES_HOST", ""),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			Database:       getEnv("POSTGRES_DB", "tipbase"),
			User:           getEnv("POSTGRES_USER", "tipbase"),
			Password:       getEnv("POSTGRES_PASSWORD", ""),
			MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
		},
		Auth: AuthConfig{
			DefaultTokens:   getEnvAsInt("AUTH_DEFAULT_TOKENS", 50),
			TipsterEmail:    getEnv("AUTH_TIPSTER_EMAIL", "tipster@demo.com"),
			TipsterPassword: getEnv("AUTH_TIPSTER_PASSWORD", "tipster123"),
		},
		Tips: TipsConfig{
			Cost:        getEnvAsInt("TIPS_COST", 5),
			MaxStored:   getEnvAsInt("TIPS_MAX_STORED", 50),
			MinFixtures: getEnvAsInt("TIPS_MIN_FIXTURES", 5),
			MaxFixtures: getEnvAsInt("TIPS_MAX_FIXTURES", 14),
			Horizon:     getEnvAsDuration("TIPS_HORIZON", 7*24*time.Hour),
		},
		Feed: FeedConfig{
			MaxStored: getEnvAsInt("FEED_MAX_STORED", 50),
		},
		Monitor: MonitorConfig{
			Enabled:  getEnvAsBool("MONITOR_ENABLED", true),
			Interval: getEnvAsDuration("MONITOR_INTERVAL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 50),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// DirectoryEnabled reports whether a user directory database is configured
func (c *Config) DirectoryEnabled() bool {
	return c.Postgres.Host != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
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

// getEnvAsBool gets an environment variable as a boolean with a default value
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

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
