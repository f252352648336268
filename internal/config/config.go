package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Auth
	JWTSecret  string
	AccessTTL  time.Duration
	BcryptCost int

	// Redis (rate limiter backend; optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Observability
	OtelEndpoint string

	// HTTP hardening
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateLimit      int
	RateWindow     time.Duration

	// Startup seed (optional)
	AdminEmail        string
	AdminPassword     string
	AdminFirstName    string
	AdminLastName     string
	AdminOrganization string
}

// Load reads the process environment (after an optional .env file) into a
// Config. It fails when the token signing secret is missing; everything else
// has a workable default.
func Load() (Config, error) {
	// .env is a convenience for local dev; a missing file is fine.
	_ = godotenv.Load()

	cfg := Config{
		Env:        getEnv("APP_ENV", "dev"),
		Port:       getEnvInt("PORT", 8080),
		DBURL:      buildDBURL(),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		AccessTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OtelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		AllowedOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RateLimit:      getEnvInt("RATE_LIMIT", 100),
		RateWindow:     getEnvDuration("RATE_WINDOW", time.Minute),

		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminFirstName:    getEnv("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:     getEnv("ADMIN_LAST_NAME", "User"),
		AdminOrganization: getEnv("ADMIN_ORGANIZATION", "Default"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "stockhub")
	pass := getEnv("DB_PASSWORD", "stockhub")
	name := getEnv("DB_NAME", "stockhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
