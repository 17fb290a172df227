package main

import (
	"context"
	"errors"
	"log"
	oshttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"roomchat/internal/api"
	"roomchat/internal/config"
	"roomchat/internal/content"
	"roomchat/internal/http"
	"roomchat/internal/moderation"
	"roomchat/internal/presence"
	"roomchat/internal/session"
	"roomchat/internal/ws"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logs.GetLoggerFromString(cfg.LogLevel)

	words := cfg.Words()
	if words == nil {
		words = moderation.DefaultWords()
	}
	moderator, err := moderation.NewModerator(words)
	if err != nil {
		return err
	}

	var sanitize func(string) string
	if cfg.SanitizeText {
		sanitize = content.Sanitize
	}

	store := presence.NewStore()
	hub := ws.NewHub(logger, cfg.SendBuffer)
	coordinator := session.NewCoordinator(session.Config{
		Store:       store,
		Broadcaster: hub,
		Filter:      moderator,
		Sanitize:    sanitize,
		Logger:      logger,
	})

	g, gCtx := errgroup.WithContext(ctx)

	wsServer := ws.NewServer(gCtx, hub, coordinator, ws.Options{
		MaxMessageSize: cfg.MaxMessageSize,
		PingInterval:   cfg.PingInterval,
	}, logger)
	apiHandlers := api.New(coordinator, store, hub, logger)
	server := http.NewServer(apiHandlers, wsServer, cfg.StaticDir, cfg.Addr(), logger)

	g.Go(func() error {
		err := server.Start()
		if err != nil && err != oshttp.ErrServerClosed {
			return err
		}
		return nil
	})

	// Wait for context cancellation (signal)
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Optional local overrides; a missing .env is fine.
	_ = godotenv.Load()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Application error: %v", err)
	}
}
