package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	LogLevel       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Backend BackendConfig

	Session SessionConfig

	// PortalAllowedOrigins is a comma-separated allowlist of browser origins. Example:
	//   https://portal.example.com,http://localhost:5173
	PortalAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	// Pool sizing. The portal only holds sessions and the activity log, so
	// the pool stays small.
	MaxConns        int
	MinConns        int
	MaxConnIdle     time.Duration
	MaxConnLifetime time.Duration
}

type BackendConfig struct {
	// BaseURL of the booking/contract/payment API, e.g. https://api.example.com
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	// Secret signs portal session tokens (HS256). Required in prod.
	Secret string
	TTL    time.Duration
	Issuer string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		LogLevel:       env("LOG_LEVEL", "info"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "energyportal"),
			User:     env("DB_USER", "energyportal"),
			Password: env("DB_PASSWORD", "energyportal"),
			SSLMode:  env("DB_SSLMODE", "disable"),

			MaxConns:        envInt("DB_MAX_CONNS", 10),
			MinConns:        envInt("DB_MIN_CONNS", 1),
			MaxConnIdle:     time.Duration(envInt("DB_MAX_CONN_IDLE_MIN", 5)) * time.Minute,
			MaxConnLifetime: time.Duration(envInt("DB_MAX_CONN_LIFETIME_MIN", 60)) * time.Minute,
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(env("BACKEND_BASE_URL", "http://localhost:8000"), "/"),
			Timeout: time.Duration(envInt("BACKEND_TIMEOUT_SEC", 20)) * time.Second,
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			TTL:    time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
			Issuer: env("SESSION_ISSUER", "energyportal"),
		},

		PortalAllowedOrigins: envList("PORTAL_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
	}
}

// IsProd reports whether verbose error details must be hidden from clients.
func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
