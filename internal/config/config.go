package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string
	WSAddr     string

	RedisURL    string
	DatabaseURL string

	RatingBand int
	EloK       int
	GameTTL    time.Duration

	LeaderboardLimit int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:       ":8080",
		WSAddr:           ":8081",
		RatingBand:       100,
		EloK:             32,
		GameTTL:          24 * time.Hour,
		LeaderboardLimit: 100,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("RATING_BAND")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RatingBand = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ELO_K")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EloK = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("GAME_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.GameTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("LEADERBOARD_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LeaderboardLimit = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
