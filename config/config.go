package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	DBURL           string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func Load() *Config {
	// A .env file is a convenience for local development; the OS environment
	// always wins.
	_ = godotenv.Load()

	return &Config{
		Env:             getEnv("ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		DBURL:           mustGetEnv("DB_URL"),
		AccessTokenTTL:  time.Duration(getEnvAsInt("ACCESS_TOKEN_TTL_SECONDS", 60)) * time.Second,
		RefreshTokenTTL: time.Duration(getEnvAsInt("REFRESH_TOKEN_TTL_SECONDS", 120)) * time.Second,
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)

	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}

	return val
}
