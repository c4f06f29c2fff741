package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	CorsAllowedOrigins string
}

type GeminiConfig struct {
	APIKey string
	// Client selects the client variant: "auto", "genai" or "legacy".
	Client         string
	Model          string
	LegacyModel    string
	BaseURL        string
	PollInterval   time.Duration
	ReadyTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
}

type StorageConfig struct {
	UploadPath  string
	StagingDir  string
	MaxFileSize int64
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type LogConfig struct {
	FilePath string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8000"),
			Env:                getEnv("ENV", "development"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Client:         getEnv("GEMINI_CLIENT", "auto"),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			LegacyModel:    getEnv("GEMINI_LEGACY_MODEL", "gemini-1.5-flash"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			PollInterval:   getEnvAsDuration("GEMINI_POLL_INTERVAL", "1s"),
			ReadyTimeout:   getEnvAsDuration("GEMINI_READY_TIMEOUT", "60s"),
			RequestTimeout: getEnvAsDuration("GEMINI_REQUEST_TIMEOUT", "120s"),
			MaxConcurrent:  getEnvAsInt("GEMINI_MAX_CONCURRENT", 4),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			StagingDir:  getEnv("STAGING_DIR", os.TempDir()),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 104857600),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", "24h"),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", "30m"),
		},
		Log: LogConfig{
			FilePath: getEnv("LOG_FILE_PATH", "logs/app.log"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
