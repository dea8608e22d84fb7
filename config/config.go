package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config carries every runtime setting the service needs. It is loaded once
// in main and passed by reference; handlers and services never read the
// environment directly.
type Config struct {
	ServerPort string
	GinMode    string

	// Identity gate
	APIKey            string // static service credential, X-API-Key header
	AdminPassword     string // plain shared secret (dev setups)
	AdminPasswordHash string // bcrypt hash, takes precedence when set
	JWTSecret         string
	JWTExpireHours    int

	// Database (empty DBDatabase selects the in-memory stores)
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string

	// Review generator
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	// SMTP (feedback notifications, optional)
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool
}

// Load reads the configuration from environment variables and applies
// defaults. It fails when a credential the identity gate depends on is
// missing.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           os.Getenv("GIN_MODE"),
		APIKey:            os.Getenv("AGENT_API_KEY"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpireHours:    getEnvInt("JWT_EXPIRE_HOURS", 24),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        os.Getenv("DB_DATABASE"),
		DBUsername:        os.Getenv("DB_USERNAME"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		GeminiAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:     time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPSkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}

	if cfg.APIKey == "" {
		return nil, errors.New("AGENT_API_KEY is required")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
