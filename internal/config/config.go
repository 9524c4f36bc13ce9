// Package config loads application configuration from the environment.
// main loads .env via godotenv before calling Load, so local development
// works with a plain .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StorageConfig selects and configures the proof blob store backend.
type StorageConfig struct {
	Backend string // "local" or "s3"
	Dir     string // local backend root directory

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
}

// PenaltyConfig configures the overdue penalty policy.
type PenaltyConfig struct {
	Mode    string          // "flat" or "percent"
	Flat    decimal.Decimal // flat fee
	Percent decimal.Decimal // percentage of the invoice sub-total
}

// Config is the full application configuration.
type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	LogLevel     string
	AuthDisabled bool
	JWTSecret    string
	CORSOrigins  []string

	SweepInterval time.Duration
	Storage       StorageConfig
	Penalty       PenaltyConfig
}

// Load reads configuration from the environment, applying defaults for
// everything except DATABASE_URL, which is required.
func Load() (*Config, error) {
	cfg := &Config{
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		AuthDisabled: getBool("AUTH_DISABLED", false),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			Dir:         getEnv("STORAGE_DIR", "data/proofs"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
			S3PathStyle: getBool("S3_PATH_STYLE", true),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment or .env file")
	}
	if !cfg.AuthDisabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set unless AUTH_DISABLED=true")
	}

	interval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	cfg.SweepInterval = interval

	cfg.Penalty, err = loadPenalty()
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case "local":
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET must be set when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func loadPenalty() (PenaltyConfig, error) {
	p := PenaltyConfig{Mode: getEnv("PENALTY_MODE", "flat")}

	flat, err := decimal.NewFromString(getEnv("PENALTY_FLAT", "200"))
	if err != nil {
		return p, fmt.Errorf("invalid PENALTY_FLAT: %w", err)
	}
	percent, err := decimal.NewFromString(getEnv("PENALTY_PERCENT", "5"))
	if err != nil {
		return p, fmt.Errorf("invalid PENALTY_PERCENT: %w", err)
	}
	p.Flat = flat
	p.Percent = percent

	if p.Mode != "flat" && p.Mode != "percent" {
		return p, fmt.Errorf("unknown PENALTY_MODE %q", p.Mode)
	}
	if p.Flat.IsNegative() || p.Percent.IsNegative() {
		return p, fmt.Errorf("penalty amounts must not be negative")
	}
	return p, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
