package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	OrientationWhite = "white"
	OrientationBlack = "black"
)

type AppConfig struct {
	ListenAddr string

	OpponentDelay      time.Duration
	BlockWhileThinking bool
	RandomSeed         int64
	StartFEN           string
	Orientation        string
	ShowOpening        bool

	SessionTTL  time.Duration
	MaxSessions int

	RedisURL      string
	EventsChannel string
	WebhookURL    string
	WebhookRetry  int

	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:         ":8080",
		OpponentDelay:      500 * time.Millisecond,
		BlockWhileThinking: true,
		Orientation:        OrientationWhite,
		ShowOpening:        true,
		SessionTTL:         3600 * time.Second,
		MaxSessions:        200,
		EventsChannel:      "chess:events",
		WebhookRetry:       3,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}

	if v := strings.TrimSpace(os.Getenv("OPPONENT_DELAY_MS")); v != "" {
		// 0 asks for an instant reply
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.OpponentDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("BLOCK_MOVES_WHILE_THINKING")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.BlockWhileThinking = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("RANDOM_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RandomSeed = n
		}
	}
	cfg.StartFEN = strings.TrimSpace(os.Getenv("START_FEN"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("BOARD_ORIENTATION"))); v != "" {
		switch v {
		case OrientationWhite, OrientationBlack:
			cfg.Orientation = v
		default:
			return nil, fmt.Errorf("BOARD_ORIENTATION must be %q or %q, got %q", OrientationWhite, OrientationBlack, v)
		}
	}
	if v := strings.TrimSpace(os.Getenv("SHOW_OPENING")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ShowOpening = b
		}
	}

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSessions = n
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if v := strings.TrimSpace(os.Getenv("EVENTS_CHANNEL")); v != "" {
		cfg.EventsChannel = v
	}
	cfg.WebhookURL = strings.TrimSpace(os.Getenv("WEBHOOK_URL"))
	if v := strings.TrimSpace(os.Getenv("WEBHOOK_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WebhookRetry = n
		}
	}

	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must start with redis:// or rediss://")
	}

	return cfg, nil
}
