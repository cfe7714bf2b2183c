package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate table sources.
const (
	RateTableEmbedded = "embedded"
	RateTableFile     = "file"
	RateTableDatabase = "database"
)

type Config struct {
	Addr               string
	Environment        string
	LogLevel           string
	LogFormat          string
	DatabaseURL        string
	RunMigrations      bool
	MigrationsDir      string
	RateTableSource    string
	RateTablePath      string
	RateTableYear      int
	JWTSecret          string
	AuthRequired       bool
	APIClients         string
	TokenTTL           time.Duration
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	AuditEnabled       bool
}

// Load reads an optional .env file and then the process environment. Variables already
// set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		DatabaseURL:        databaseURL,
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RateTableSource:    strings.ToLower(getEnv("RATE_TABLE_SOURCE", RateTableEmbedded)),
		RateTablePath:      getEnv("RATE_TABLE_PATH", ""),
		RateTableYear:      getEnvInt("RATE_TABLE_YEAR", 2025),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AuthRequired:       getEnvBool("AUTH_REQUIRED", false),
		APIClients:         getEnv("API_CLIENTS", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", time.Hour),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 65536)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		AuditEnabled:       getEnvBool("AUDIT_ENABLED", databaseURL != ""),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.RateTableSource {
	case RateTableEmbedded:
	case RateTableFile:
		if strings.TrimSpace(c.RateTablePath) == "" {
			return fmt.Errorf("RATE_TABLE_PATH is required when RATE_TABLE_SOURCE is file")
		}
	case RateTableDatabase:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when RATE_TABLE_SOURCE is database")
		}
	default:
		return fmt.Errorf("RATE_TABLE_SOURCE must be embedded, file or database, got %q", c.RateTableSource)
	}
	if c.AuditEnabled && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required when AUDIT_ENABLED is true")
	}
	if c.AuthRequired && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_REQUIRED is true")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
