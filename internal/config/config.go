package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Local cache (SQLite file, the device-side mirror)
	CachePath string

	// Remote document store (JSONBin-style API)
	BinAPIURL string
	BinAPIKey string
	BinID     string

	// Admin panel
	AdminPassword string
	JWTSecret     string

	// Policy
	DailyWordLimit int

	// Background snapshot refresh (0 = disabled)
	SnapshotRefreshMinutes int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "8080"),
		Env:                    getEnvOrDefault("ENV", "development"),
		CachePath:              getEnvOrDefault("CACHE_PATH", "./wordvault.db"),
		BinAPIURL:              getEnvOrDefault("BIN_API_URL", "https://api.jsonbin.io/v3"),
		BinAPIKey:              getEnvOrDefault("BIN_API_KEY", ""),
		BinID:                  getEnvOrDefault("BIN_ID", ""),
		AdminPassword:          getEnvOrDefault("ADMIN_PASSWORD", ""),
		JWTSecret:              mustGetEnv("JWT_SECRET"),
		DailyWordLimit:         getEnvAsIntOrDefault("DAILY_WORD_LIMIT", 5),
		SnapshotRefreshMinutes: getEnvAsIntOrDefault("SNAPSHOT_REFRESH_MINUTES", 0),
		FrontendURL:            getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
