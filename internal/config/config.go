package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL          string
	RedisURL             string
	NewsAPIURL           string
	PredictionAPIBaseURL string
	PremiumUpstreamURL   string
	NewsPollSecs         int
	PredictionPollSecs   int
	NewsRetentionCap     int
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		NewsAPIURL:           strings.TrimSpace(os.Getenv("NEWS_API_URL")),
		PredictionAPIBaseURL: strings.TrimSpace(os.Getenv("PREDICTION_API_BASE_URL")),
		PremiumUpstreamURL:   strings.TrimSpace(os.Getenv("PREMIUM_UPSTREAM_URL")),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.NewsAPIURL == "" {
		log.Println("Warning: NEWS_API_URL not set, news refresh will fail until configured")
	}
	if cfg.PredictionAPIBaseURL == "" {
		log.Println("Warning: PREDICTION_API_BASE_URL not set, prediction refresh will fail until configured")
	}
	if cfg.PremiumUpstreamURL == "" {
		log.Println("Warning: PREMIUM_UPSTREAM_URL not set, premium forwarding disabled")
	}

	// News refreshes hourly, predictions every five minutes.
	cfg.NewsPollSecs = 3600
	if v := os.Getenv("NEWS_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsPollSecs = n
		}
	}

	cfg.PredictionPollSecs = 300
	if v := os.Getenv("PREDICTION_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PredictionPollSecs = n
		}
	}

	cfg.NewsRetentionCap = 20
	if v := os.Getenv("NEWS_RETENTION_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsRetentionCap = n
		}
	}

	return cfg
}
