package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/medusaxd/medusa-bot/internal/adapter/repo"
	"github.com/medusaxd/medusa-bot/internal/bot"
	"github.com/medusaxd/medusa-bot/internal/domain"
	"github.com/medusaxd/medusa-bot/internal/http/handlers"
	"github.com/medusaxd/medusa-bot/internal/http/httpapi"
	"github.com/medusaxd/medusa-bot/internal/imagegen"
	"github.com/medusaxd/medusa-bot/internal/infra"
	"github.com/medusaxd/medusa-bot/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := repo.EnsureSchema(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	users := repo.NewUserRepository(dbpool)
	admins := repo.NewAdminRepository(dbpool)
	bans := repo.NewBanRepository(dbpool)
	settings := repo.NewSettingsRepository(dbpool)
	audit := repo.NewAuditRepository(dbpool)

	var limiter domain.RateLimiter
	if cfg.RateLimitBackend == "redis" {
		rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		limiter = repo.NewRateLimiterRedis(rdb)
		logger.Info().Msg("rate limiting backed by redis")
	} else {
		limiter = repo.NewRateLimiterPG(dbpool)
	}

	// Configured admins are authorized users too, so a fresh deployment
	// is usable without manual inserts.
	for _, adminID := range cfg.AdminIDs {
		if err := admins.Add(ctx, adminID); err != nil {
			logger.Fatal().Err(err).Int64("admin_id", adminID).Msg("failed to bootstrap admin")
		}
		if err := users.Authorize(ctx, adminID, "", adminID); err != nil {
			logger.Fatal().Err(err).Int64("admin_id", adminID).Msg("failed to authorize admin")
		}
	}

	generator, err := imagegen.NewClient(imagegen.Options{
		Endpoints:      cfg.ImageEndpoints,
		MaxAttempts:    cfg.ImageMaxAttempts,
		BackoffCap:     cfg.ImageBackoffCap,
		RateLimitDelay: cfg.ImageRetryAfter,
		OverallTimeout: cfg.GenerateDeadline,
		HTTPClient:     &http.Client{Timeout: cfg.ImageCallTimeout},
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image client")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open bot session")
	}
	api.Debug = cfg.AppEnv == "development"

	sender := telegram.NewDirectSender(api)
	channel := bot.NewChannelLogger(sender, cfg.LogChannelID, &logger)
	gate := bot.NewGate(settings, users, bans, &logger)
	orch := bot.NewOrchestrator(bot.Options{
		DefaultModel:       cfg.DefaultModel,
		DefaultAspectRatio: cfg.DefaultAspectRatio,
		MaxImages:          cfg.MaxImagesPerReq,
		RateWindow:         cfg.RateLimitWindow,
		RateMax:            cfg.RateLimitMaxReq,
	}, gate, users, limiter, audit, generator, channel, &logger)
	admin := bot.NewAdmin(admins, users, bans, settings, audit, sender, channel, &logger)

	app := handlers.NewApp(dbpool, audit, &logger)
	router := httpapi.NewRouter(app, logger, cfg.OpsRatePerMin)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("ops API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	tgBot := telegram.NewBot(api, orch, admin, &logger)
	logger.Info().Str("bot", tgBot.Username()).Msg("bot online")
	channel.SystemEvent(ctx, "bot started: @"+tgBot.Username())

	if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("update loop stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	channel.SystemEvent(shutdownCtx, "bot stopping")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("bot stopped")
}
