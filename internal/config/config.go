package config

import (
	"os"
	"time"
)

type Config struct {
	DB      DBConfig
	Server  ServerConfig
	Secrets SecretsConfig
	Advisor AdvisorConfig
	Store   StoreConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type ServerConfig struct {
	Port string
}

type SecretsConfig struct {
	// ParameterName is the SSM parameter holding the JWT signing secret.
	ParameterName string
	// DevSecret, when set, bypasses SSM entirely. Local development only.
	DevSecret string
}

type AdvisorConfig struct {
	ModelID string
	Region  string
}

type StoreConfig struct {
	// SweepInterval controls how often claimed codes past their ttl are
	// purged from the store.
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "personalboard"),
			Password: getEnv("DB_PASSWORD", "personalboard_secret"),
			Name:     getEnv("DB_NAME", "personalboard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Secrets: SecretsConfig{
			ParameterName: getEnv("JWT_SECRET_PARAMETER", "/personal-board/jwt-secret"),
			DevSecret:     getEnv("JWT_DEV_SECRET", ""),
		},
		Advisor: AdvisorConfig{
			ModelID: getEnv("ADVISOR_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
			Region:  getEnv("ADVISOR_REGION", "us-east-1"),
		},
		Store: StoreConfig{
			SweepInterval: getEnvAsDuration("CODE_SWEEP_INTERVAL", 1*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
