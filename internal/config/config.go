package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort       int
	DatabasePath     string
	UploadDir        string // Base path for uploaded images
	JWTSecret        string
	TrendingSchedule string // Cron spec for the trending hashtag refresh
}

// Load loads configuration from environment variables (and an optional .env
// file) or sets defaults. The JWT secret has no default: without it every
// issued token would be forgeable, so a missing secret fails the load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}

	return &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./picstream.db"),
		UploadDir:        getEnv("UPLOAD_DIR", "./static/uploads"),
		JWTSecret:        secret,
		TrendingSchedule: getEnv("TRENDING_SCHEDULE", "@hourly"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
