// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/application"
	"avito-telegram-relay/internal/config"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/adapters/avito"
	tele "avito-telegram-relay/internal/infra/adapters/telegram"
	"avito-telegram-relay/internal/infra/api"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/infra/logging"
	"avito-telegram-relay/internal/infra/memory"
	"avito-telegram-relay/internal/infra/metrics"
	red "avito-telegram-relay/internal/infra/redis"
	"avito-telegram-relay/internal/infra/sched"
	"avito-telegram-relay/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "log notifications instead of sending them to Telegram")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Telegram output is logged, not sent")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("relay stopped")
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Telegram.Language)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Avito ----
	market, err := avito.NewClient(&cfg.Avito, logger, cfg.Runtime.Dev)
	if err != nil {
		return fmt.Errorf("avito: %w", err)
	}

	// ---- Relay state ----
	seen, err := memory.NewSeenStore(cfg.Relay.SeenCapacity)
	if err != nil {
		return fmt.Errorf("seen store: %w", err)
	}
	tracker := usecase.NewTracker(seen, time.Now().Add(-cfg.Relay.InitialLookback).Unix())

	// ---- Facade ----
	commandUC := usecase.NewCommandUseCase(market, translator, logger)
	facade := application.NewBotFacade(commandUC, tracker, translator, logger)

	// ---- Redis (optional) ----
	var limiter tele.Limiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient, cfg.Redis.RateLimit, cfg.Redis.RateWindow)
		logger.Info().Int("limit", cfg.Redis.RateLimit).Dur("window", cfg.Redis.RateWindow).Msg("command rate limiting enabled")
	}

	// ---- Telegram ----
	var sink adapter.TelegramBotAdapter
	if cfg.Runtime.Dev {
		sink = tele.NewNoopBotAdapter(logger)
	} else {
		botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Telegram, facade, translator, limiter, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		if err := botAdapter.RegisterCommands(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to publish bot commands")
		}
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
		sink = botAdapter
	}

	// ---- Use cases ----
	notifier := usecase.NewNotificationUseCase(sink, translator, usecase.NotifierOptions{
		ChatID:       cfg.Telegram.ChatID,
		ProfileURL:   cfg.Avito.ProfileURL,
		AccountLabel: cfg.Avito.AccountLabel,
	}, logger)
	relay := usecase.NewRelayUseCase(market, notifier, tracker, translator, usecase.RelayOptions{
		AuthAlertLimit:      cfg.Relay.AuthAlertLimit,
		MaxDeliveryAttempts: cfg.Relay.MaxDeliveryAttempts,
	}, logger)

	// ---- HTTP: health, status, metrics ----
	srv := api.NewServer(cfg.HTTP.Port, tracker, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// ---- Poll loop ----
	logger.Info().
		Str("account", cfg.Avito.UserID).
		Int64("tg_chat", cfg.Telegram.ChatID).
		Int64("watermark", tracker.Watermark()).
		Msg("relay started")
	err = sched.NewPollWorker(sched.PollInterval, relay, logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("shutdown requested")
		return nil
	}
	return err
}
