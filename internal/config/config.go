package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Debug      bool

	// Storage backend: "sql" or "redis"
	StoreBackend     string
	StorePrefix      string
	DefaultProfileID string

	// SQL backend
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Redis backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI gateway
	GenAIAPIKey     string
	GenAITextModel  string
	GenAIImageModel string
	AITimeout       time.Duration

	// Caregiver lock
	JWTSecret         string
	CaregiverTokenTTL time.Duration

	// Activity digest email
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	ImportMaxSize      int64
	RateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	return &Config{
		ServerPort: getEnv("PORT", "8080"),
		Debug:      getEnvBool("DEBUG", false),

		StoreBackend:     getEnv("STORE_BACKEND", "sql"),
		StorePrefix:      getEnv("STORE_PREFIX", "calm_app_"),
		DefaultProfileID: getEnv("DEFAULT_PROFILE_ID", "default"),

		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./calmcompanion.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GenAIAPIKey:     getEnv("GENAI_API_KEY", ""),
		GenAITextModel:  getEnv("GENAI_TEXT_MODEL", "gemini-2.5-flash"),
		GenAIImageModel: getEnv("GENAI_IMAGE_MODEL", "imagen-3.0-generate-002"),
		AITimeout:       getEnvDuration("AI_TIMEOUT", 30*time.Second),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		CaregiverTokenTTL: getEnvDuration("CAREGIVER_TOKEN_TTL", 30*time.Minute),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Calm Companion"),

		ImportMaxSize:      2 * 1024 * 1024, // 2MB
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
