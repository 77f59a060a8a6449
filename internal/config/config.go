package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPort    = "4202"
	StorageMemory  = "memory"
	StorageSQLite  = "sqlite"
	DefaultStorage = StorageMemory
)

// Config is the process configuration assembled from the environment.
type Config struct {
	Port                    string
	Storage                 string
	LogLevel                logrus.Level
	GinMode                 string
	PlaygroundEnabled       bool
	ComplexityLimit         int
	MaxDepth                int
	SubscriptionBuffer      int
	SubscriptionSendTimeout time.Duration
	KeepAlive               time.Duration
}

// Load reads the configuration; call LoadEnv first to pick up .env files.
func Load() Config {
	ginMode := GetEnv("GIN_MODE", "debug")
	return Config{
		Port:                    GetEnv("PORT", DefaultPort),
		Storage:                 GetEnv("STORAGE", DefaultStorage),
		LogLevel:                GetLogLevel(),
		GinMode:                 ginMode,
		PlaygroundEnabled:       GetEnvBool("GRAPHQL_PLAYGROUND_ENABLED", ginMode != "release"),
		ComplexityLimit:         GetEnvInt("GRAPHQL_COMPLEXITY_LIMIT", 200),
		MaxDepth:                GetEnvInt("GRAPHQL_MAX_DEPTH", 10),
		SubscriptionBuffer:      GetEnvInt("SUBSCRIPTION_BUFFER", 16),
		SubscriptionSendTimeout: GetEnvDuration("SUBSCRIPTION_SEND_TIMEOUT", 500*time.Millisecond),
		KeepAlive:               GetEnvDuration("WEBSOCKET_KEEPALIVE", 10*time.Second),
	}
}

// LoadEnv loads environment variables from .env files when present
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.dev"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			logger.WithError(err).Warnf("Failed to load %s", file)
			continue
		}
		loaded = append(loaded, file)
	}
	if len(loaded) == 0 {
		logger.Debug(".env file not found; relying on process environment")
		return
	}
	logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetLogLevel gets the log level from LOG_LEVEL
func GetLogLevel() logrus.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
