package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	DatabaseDriver string // postgres | sqlite
	DatabaseDSN    string
	JWTSecret      string
	JWTExpiresIn   time.Duration
	CORSOrigins    string

	LogLevel  string
	LogPretty bool

	GeminiAPIKey string
	GeminiModel  string
	GCSBucket    string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	RecurringCron string
	ReportCron    string
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=fintrack port=5432 sslmode=disable"

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiresIn:   getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GCSBucket:    getEnv("GCS_BUCKET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "monthly_reports"),

		RecurringCron: getEnv("RECURRING_CRON", "@hourly"),
		ReportCron:    getEnv("REPORT_CRON", "0 6 * * *"),
	}

	return cfg
}

// Validate collects every configuration problem into one error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid HTTP_PORT %q", c.HTTPPort))
	}

	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("invalid DATABASE_DRIVER %q: must be postgres or sqlite", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		problems = append(problems, "DATABASE_DSN is empty")
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is not set")
	} else if len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters")
	}
	if c.JWTExpiresIn <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		problems = append(problems, "AMQP_EXCHANGE and AMQP_QUEUE are required when AMQP_URL is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Warnings lists settings that work but should not reach production.
func (c *Config) Warnings() []string {
	var w []string
	if c.DatabaseDSN == defaultDSN {
		w = append(w, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		w = append(w, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.GCSBucket == "" {
		w = append(w, "GCS_BUCKET is not set, image uploads are disabled")
	}
	if c.GeminiAPIKey == "" {
		w = append(w, "GEMINI_API_KEY is not set, receipt scanning is disabled")
	}
	if c.AMQPURL == "" {
		w = append(w, "AMQP_URL is not set, monthly reports are only logged")
	}
	return w
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvDuration accepts Go durations plus a "d" suffix for days ("7d").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func ParseDuration(v string) (time.Duration, error) {
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", v, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
