package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Env            string
	DBPath         string
	LogLevel       string
	CORSOrigins    string
	CascadeDelete  bool
	OpTimeout      time.Duration
	BackupDir      string
	BackupInterval time.Duration
}

var AppConfig *Config

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:           GetEnv("PORT", "3000"),
		Env:            GetEnv("ENV", "development"),
		DBPath:         GetEnv("DB_PATH", "./data/memo-app.db"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		CORSOrigins:    GetEnv("CORS_ORIGINS", "*"),
		CascadeDelete:  GetBool("CASCADE_DELETE", true),
		OpTimeout:      GetDuration("OP_TIMEOUT", 5*time.Second),
		BackupDir:      GetEnv("BACKUP_DIR", ""),
		BackupInterval: GetDuration("BACKUP_INTERVAL", 10*time.Minute),
	}

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBool parses key with strconv.ParseBool, falling back to the default on
// missing or unparsable values.
func GetBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// GetDuration parses key as a Go duration ("5s", "10m").
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
