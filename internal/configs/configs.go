/*
Package configs is responsible for loading and parsing the application's configuration settings.

It reads operating system environment variables (optionally seeded from a local .env file),
covering the running environment, port, CORS allowed origins, the shared token secret,
meeting widget identifiers, database and optional avatar storage settings.
*/
package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// insecureDevSecret is only ever used when ENVIRONMENT=development and SECRET_KEY is unset.
	insecureDevSecret = "your_default_insecure_secret_key_change_me"

	defaultBcryptCost = 12
	testBcryptCost    = 4
)

// AppConfig contains all configuration parameters required for the application to run.
// It is built once at startup and treated as read-only afterwards.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins  []string
	SecretKey       string
	BcryptCost      int
	SessionTokenTTL time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int

	// Meeting Widget Settings
	JitsiAppID string
	AppDomain  string

	// Database Settings
	DatabaseDSN string

	// S3 Storage Settings (optional, all four or none)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// StorageEnabled reports whether every S3 setting was provided.
func (c *AppConfig) StorageEnabled() bool {
	return c.S3BucketName != "" && c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

// LoadConfig reads and parses the application configuration from environment variables.
// A .env file in the working directory is loaded first when present; variables already
// set in the process environment are never overridden by it.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = getEnv("ENVIRONMENT", "development")

	port, err := strconv.Atoi(getEnv("PORT", "3001"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", port, 1024, 65535)
	}
	cfg.Port = port

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.SecretKey = os.Getenv("SECRET_KEY")
	if cfg.SecretKey == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("SECRET_KEY environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.SecretKey = insecureDevSecret
	}

	defaultCost := defaultBcryptCost
	if cfg.Environment == "test" {
		defaultCost = testBcryptCost
	}
	cost, err := strconv.Atoi(getEnv("BCRYPT_WORK_FACTOR", strconv.Itoa(defaultCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_WORK_FACTOR environment variable: %w", err)
	}
	if cost < 4 || cost > 31 {
		return nil, fmt.Errorf("BCRYPT_WORK_FACTOR %d is outside the supported range (4-31)", cost)
	}
	cfg.BcryptCost = cost

	ttl, err := time.ParseDuration(getEnv("SESSION_TOKEN_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TOKEN_TTL environment variable: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("SESSION_TOKEN_TTL must not be negative, got %s", ttl)
	}
	cfg.SessionTokenTTL = ttl

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS environment variable: %q", os.Getenv("RATE_LIMIT_RPS"))
	}
	cfg.RateLimitRPS = rps

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil || burst <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST environment variable: %q", os.Getenv("RATE_LIMIT_BURST"))
	}
	cfg.RateLimitBurst = burst

	// --- Meeting Widget Settings ---
	cfg.JitsiAppID = os.Getenv("JITSI_APP_ID")
	cfg.AppDomain = os.Getenv("APP_DOMAIN")

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
	if cfg.DatabaseDSN == "" {
		switch cfg.Environment {
		case "development":
			cfg.DatabaseDSN = "postgresql:///mocrs"
		case "test":
			cfg.DatabaseDSN = "postgresql:///mocrs_test"
		default:
			return nil, fmt.Errorf("DATABASE_URL environment variable is required in %s environment", cfg.Environment)
		}
	}

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	anyS3 := cfg.S3BucketName != "" || cfg.S3Endpoint != "" || cfg.S3AccessKeyID != "" || cfg.S3SecretAccessKey != ""
	if anyS3 && !cfg.StorageEnabled() {
		return nil, fmt.Errorf("S3 storage is partially configured: S3_BUCKET_NAME, S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must all be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
