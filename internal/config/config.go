package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mkovac/postforge-api/internal/crypto"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	// SecretsKey is the process-wide encryption key for stored API keys.
	// Loaded once at startup and immutable thereafter; rotating it is an
	// offline migration (see cmd/rotate-key).
	SecretsKey []byte

	DefaultDailyQuota int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	key, err := crypto.DecodeKey(getEnvOrPanic("SECRETS_ENCRYPTION_KEY"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECRETS_ENCRYPTION_KEY: %w", err)
	}

	dailyQuota, err := strconv.Atoi(getEnv("DAILY_GENERATION_LIMIT", "50"))
	if err != nil || dailyQuota < 1 {
		dailyQuota = 50
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SecretsKey: key,

		DefaultDailyQuota: dailyQuota,
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
