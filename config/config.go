package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	Env      string // development or production

	DatabaseURL string

	Redis RedisConfig
	JWT   JWTConfig
	Email EmailConfig
	Auth  AuthConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
	AppBaseURL   string
}

type AuthConfig struct {
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	TwoFactorTokenTTL    time.Duration

	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
}

// Load reads configuration from the environment. A .env file is honored
// when present, real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		Env:         getEnv("APP_ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:   []byte(getEnv("JWT_SECRET", "")),
			Issuer:   getEnv("JWT_ISSUER", "authflow"),
			TokenTTL: getDurationEnv("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "Auth App <onboarding@resend.dev>"),
			AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),
		},
		Auth: AuthConfig{
			VerificationTokenTTL: getDurationEnv("VERIFICATION_TOKEN_TTL", time.Hour),
			ResetTokenTTL:        getDurationEnv("RESET_TOKEN_TTL", time.Hour),
			TwoFactorTokenTTL:    getDurationEnv("TWO_FACTOR_TOKEN_TTL", 15*time.Minute),
			LoginAttemptLimit:    getIntEnv("LOGIN_ATTEMPT_LIMIT", 5),
			LoginAttemptWindow:   getDurationEnv("LOGIN_ATTEMPT_WINDOW", time.Minute),
		},
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
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
