package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hubcoin/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort         string
	DatabaseURL     string
	BotToken        string
	FrontendURL     string
	StaticDir       string
	AdminTelegramID int64 // the only identity allowed to refresh the leaderboard

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Calendar used for the daily gem counter
	ClaimLocation *time.Location

	APIRateLimit  int
	APIRateWindow time.Duration

	NotifyWorkers   int
	NotifyQueueSize int
}

// Load reads .env (if present) and the environment. Missing DATABASE_URL is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadFrom(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// LoadFrom builds a Config from an arbitrary lookup function
func LoadFrom(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	port := getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var adminID int64
	if v := strings.TrimSpace(getenv("ADMIN_TELEGRAM_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err)
		}
		adminID = id
	}

	loc := time.UTC
	if v := getenv("CLAIM_TIMEZONE"); v != "" {
		l, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("CLAIM_TIMEZONE: %w", err)
		}
		loc = l
	}

	logLevel := getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:         port,
		DatabaseURL:     dbURL,
		BotToken:        getenv("BOT_TOKEN"),
		FrontendURL:     getenv("FRONTEND_URL"),
		StaticDir:       getenv("STATIC_DIR"),
		AdminTelegramID: adminID,
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
		RedisDB:         intOr(getenv("REDIS_DB"), 0),
		LogLevel:        logLevel,
		LogJSON:         getenv("LOG_JSON") == "true",
		ClaimLocation:   loc,
		APIRateLimit:    positiveIntOr(getenv("API_RATE_LIMIT"), 30),
		APIRateWindow:   time.Duration(positiveIntOr(getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second,
		NotifyWorkers:   positiveIntOr(getenv("NOTIFY_WORKERS"), 2),
		NotifyQueueSize: positiveIntOr(getenv("NOTIFY_QUEUE_SIZE"), 256),
	}, nil
}

func intOr(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func positiveIntOr(v string, def int) int {
	n := intOr(v, def)
	if n <= 0 {
		return def
	}
	return n
}
