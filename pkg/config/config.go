package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Standings feed
	Feed FeedConfig

	// Qualification simulator
	Simulator SimulatorConfig

	// API
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// FeedConfig describes where live standings come from
type FeedConfig struct {
	URL      string
	Format   string // json or html
	Schedule string // cron expression with seconds
	Timeout  time.Duration
}

// SimulatorConfig bounds the enumeration
type SimulatorConfig struct {
	MaxFixtures int           // per group, 2^MaxFixtures branches
	Workers     int           // 0 = runtime.NumCPU()
	Timeout     time.Duration // per request
}

// APIConfig holds HTTP surface settings
type APIConfig struct {
	RateLimit           float64 // predict requests per second per client
	RateBurst           int
	CORSOrigin          string
	PredictionRetention time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // must cover SIM_TIMEOUT for /api/refresh
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Feed: FeedConfig{
			URL:      getEnv("FEED_URL", ""),
			Format:   getEnv("FEED_FORMAT", "json"),
			Schedule: getEnv("FEED_SCHEDULE", "0 */2 * * * *"),
			Timeout:  getEnvAsDuration("FEED_TIMEOUT", "15s"),
		},

		Simulator: SimulatorConfig{
			MaxFixtures: getEnvAsInt("SIM_MAX_FIXTURES", 20),
			Workers:     getEnvAsInt("SIM_WORKERS", 0),
			Timeout:     getEnvAsDuration("SIM_TIMEOUT", "5s"),
		},

		API: APIConfig{
			RateLimit:           getEnvAsFloat("API_RATE_LIMIT", 5),
			RateBurst:           getEnvAsInt("API_RATE_BURST", 10),
			CORSOrigin:          getEnv("CORS_ORIGIN", "*"),
			PredictionRetention: getEnvAsDuration("PREDICTION_RETENTION", "168h"),
			ReadTimeout:         getEnvAsDuration("HTTP_READ_TIMEOUT", "15s"),
			WriteTimeout:        getEnvAsDuration("HTTP_WRITE_TIMEOUT", "15s"),
			IdleTimeout:         getEnvAsDuration("HTTP_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout:     getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", "30s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks values that would otherwise fail late
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Feed.Format != "json" && c.Feed.Format != "html" {
		return fmt.Errorf("FEED_FORMAT must be one of: json, html")
	}

	// 2^30 branches is already minutes of CPU per group
	if c.Simulator.MaxFixtures < 1 || c.Simulator.MaxFixtures > 30 {
		return fmt.Errorf("SIM_MAX_FIXTURES must be between 1 and 30, got %d", c.Simulator.MaxFixtures)
	}

	if c.Simulator.Workers < 0 {
		return fmt.Errorf("SIM_WORKERS must not be negative")
	}

	if c.API.RateLimit <= 0 || c.API.RateBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}

	if c.API.WriteTimeout > 0 && c.API.WriteTimeout < c.Simulator.Timeout {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT (%v) must not be shorter than SIM_TIMEOUT (%v)", c.API.WriteTimeout, c.Simulator.Timeout)
	}

	return nil
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
