package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv       string
	Port         string
	BotToken     string
	DatabaseURL  string
	RedisURL     string
	LogChannelID int64
	AdminIDs     []int64

	DefaultModel       string
	DefaultAspectRatio string
	MaxImagesPerReq    int

	RateLimitBackend string
	RateLimitWindow  time.Duration
	RateLimitMaxReq  int

	ImageEndpoints   []string
	ImageMaxAttempts int
	ImageBackoffCap  time.Duration
	ImageRetryAfter  time.Duration
	ImageCallTimeout time.Duration
	GenerateDeadline time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	OpsRatePerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:       getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		BotToken:     os.Getenv("BOT_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		LogChannelID: getEnvInt64("LOG_CHANNEL_ID", 0),
		AdminIDs:     parseIDList(os.Getenv("ADMIN_IDS")),

		DefaultModel:       getEnv("DEFAULT_MODEL", "turbo"),
		DefaultAspectRatio: getEnv("DEFAULT_ASPECT_RATIO", "square"),
		MaxImagesPerReq:    getEnvInt("MAX_IMAGES_PER_REQUEST", 4),

		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "postgres"),
		RateLimitWindow:  time.Minute * time.Duration(getEnvInt("RATE_LIMIT_MINUTES", 5)),
		RateLimitMaxReq:  getEnvInt("MAX_REQUESTS_PER_PERIOD", 10),

		ImageEndpoints:   parseList(getEnv("IMAGE_API_ENDPOINTS", "https://aiworldcreator.com/v1/images/generations")),
		ImageMaxAttempts: getEnvInt("IMAGE_MAX_ATTEMPTS", 3),
		ImageBackoffCap:  time.Second * time.Duration(getEnvInt("IMAGE_BACKOFF_CAP_SECONDS", 12)),
		ImageRetryAfter:  time.Second * time.Duration(getEnvInt("IMAGE_RATE_LIMIT_DELAY_SECONDS", 30)),
		ImageCallTimeout: time.Second * time.Duration(getEnvInt("IMAGE_CALL_TIMEOUT_SECONDS", 90)),
		GenerateDeadline: time.Second * time.Duration(getEnvInt("GENERATE_DEADLINE_SECONDS", 120)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		OpsRatePerMin:    getEnvInt("OPS_RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.LogChannelID == 0 {
		return nil, fmt.Errorf("LOG_CHANNEL_ID is required")
	}

	if len(cfg.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS must list at least one admin user id")
	}

	if cfg.RateLimitBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIDList(raw string) []int64 {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}
