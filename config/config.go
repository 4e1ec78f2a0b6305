package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DataDir       string
	StorageDriver string // "file" or "postgres"
	DatabaseURL   string
	RedisURL      string

	GeminiAPIKey  string
	GeminiBaseURL string

	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Bucket    string

	AutosaveInterval time.Duration
}

func LoadConfig() *Config {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("PORT", "8080"),
		DataDir:          getEnv("DATA_DIR", "data"),
		StorageDriver:    getEnv("STORAGE_DRIVER", "file"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:    os.Getenv("GEMINI_BASE_URL"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Bucket:         getEnv("S3_BUCKET", "novelweaver"),
		AutosaveInterval: getEnvDuration("AUTOSAVE_INTERVAL_SECONDS", 120*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
