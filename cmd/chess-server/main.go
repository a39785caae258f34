package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/simple-ai-chess/internal/adapter/chesspresenter"
	appcfg "github.com/park285/simple-ai-chess/internal/config"
	"github.com/park285/simple-ai-chess/internal/events"
	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/internal/msgcat"
	"github.com/park285/simple-ai-chess/internal/obslog"
	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/internal/server"
	"github.com/park285/simple-ai-chess/internal/session"
	"go.uber.org/zap"
)

const (
	eventQueueSize  = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	// fail fast on a bad START_FEN instead of on the first visitor
	if _, err := rules.New(cfg.StartFEN); err != nil {
		logger.Fatal("start_fen_invalid", zap.String("fen", cfg.StartFEN), zap.Error(err))
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("catalog_load_failed", zap.String("dir", cfg.MessagesDir), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("publisher_init_failed", zap.Error(err))
	}
	dispatcher := events.NewDispatcher(pub, eventQueueSize, logger)

	registry := session.NewRegistry(session.Config{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Game: game.Options{
			Factory:                rules.NewFactory(cfg.StartFEN),
			Delay:                  cfg.OpponentDelay,
			InstantReply:           cfg.OpponentDelay == 0,
			AllowMoveWhileThinking: !cfg.BlockWhileThinking,
			Seed:                   cfg.RandomSeed,
			NameOpenings:           cfg.ShowOpening,
		},
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	go registry.Run(ctx, sweepInterval(cfg.SessionTTL))

	presenter := chesspresenter.NewPresenter(chesspresenter.NewFormatter(cat), cfg.Orientation, logger)
	srv, err := server.New(server.Config{
		Registry:  registry,
		Presenter: presenter,
		Logger:    logger,
		CookieTTL: cfg.SessionTTL,
	})
	if err != nil {
		logger.Fatal("server_init_failed", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_requested")
	case err := <-errCh:
		logger.Error("server_failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_failed", zap.Error(err))
	}
	// closes live sessions, which also ends their WebSocket streams
	registry.Close()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("event_dispatcher_close_failed", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

func buildPublisher(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) (events.Publisher, error) {
	var pubs []events.Publisher
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rp, err := events.NewRedisPublisher(pingCtx, cfg.RedisURL, cfg.EventsChannel)
		if err != nil {
			return nil, err
		}
		logger.Info("events_redis_enabled", zap.String("channel", rp.Channel()))
		pubs = append(pubs, rp)
	}
	if cfg.WebhookURL != "" {
		pubs = append(pubs, events.NewWebhookPublisher(cfg.WebhookURL, events.WithRetry(cfg.WebhookRetry)))
		logger.Info("events_webhook_enabled")
	}
	switch len(pubs) {
	case 0:
		return events.Nop(), nil
	case 1:
		return pubs[0], nil
	default:
		return events.Multi(pubs...), nil
	}
}

// sweepInterval checks a few times per TTL, bounded to [1s, 1m].
func sweepInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Second {
		iv = time.Second
	}
	if iv > time.Minute {
		iv = time.Minute
	}
	return iv
}
