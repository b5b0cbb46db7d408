package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	// Managed platform endpoints and credentials
	PlatformURL string // base URL of the managed auth/data platform
	ServiceKey  string // service-role key for the privileged client
	DatabaseURL string // direct PostgreSQL connection string
	JWKSURL     string // constructed from PlatformURL
	CORSOrigins string
	TablePrefix string
	LogDir      string // when set, server logs also go to timestamped files
	Debug       bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	platformURL := getEnv("PLATFORM_URL", "")

	// The auth layer publishes its signing keys next to its base URL
	jwksURL := platformURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		PlatformURL: platformURL,
		ServiceKey:  getEnv("SERVICE_KEY", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     jwksURL,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		LogDir:      getEnv("LOG_DIR", ""),
		Debug:       getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
