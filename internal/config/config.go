package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	CalcomBaseURL string
	CalcomAPIKey  string
	CalcomTimeout time.Duration

	SyncInterval time.Duration
	SyncPageSize int

	RateLimit RateLimitConfig
}

// RateLimitConfig controls redis-backed ingest throttling. Disabled when
// RedisAddr is empty.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IngestRate   float64
	IngestBurst  int
	SessionRate  float64
	SessionBurst int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "inkhaus"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "inkhaus"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		CalcomBaseURL: getenv("CALCOM_BASE_URL", "https://api.cal.com/v1"),
		CalcomAPIKey:  strings.TrimSpace(getenv("CALCOM_API_KEY", "")),
		CalcomTimeout: getenvDuration("CALCOM_TIMEOUT", 20*time.Second),

		SyncInterval: getenvDuration("SYNC_INTERVAL", 15*time.Minute),
		SyncPageSize: getenvInt("SYNC_PAGE_SIZE", 100),

		RateLimit: RateLimitConfig{
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: getenv("REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("REDIS_DB", 0),
			IngestRate:    getenvFloat("INGEST_RATE_LIMIT", 200),
			IngestBurst:   getenvInt("INGEST_RATE_BURST", 400),
			SessionRate:   getenvFloat("INGEST_SESSION_RATE_LIMIT", 10),
			SessionBurst:  getenvInt("INGEST_SESSION_RATE_BURST", 30),
		},
	}
	cfg.RateLimit.Enabled = cfg.RateLimit.RedisAddr != ""

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("[config] invalid int for %s: %v", key, err)
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %v", key, err)
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		log.Printf("[config] invalid duration for %s: %v", key, err)
		return fallback
	}
	return parsed
}

// Module wires application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewAnalyticsConfigHolder),
)
