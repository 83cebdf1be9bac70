package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo-order-bot/config"
	"promo-order-bot/internal/adapter/chain"
	"promo-order-bot/internal/adapter/http/handler"
	"promo-order-bot/internal/adapter/storage/postgres"
	"promo-order-bot/internal/adapter/storage/redis"
	"promo-order-bot/internal/adapter/telegram"
	"promo-order-bot/internal/core/ports"
	"promo-order-bot/internal/service"
	"promo-order-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage.
	pool, err := postgres.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to redis")
	}
	defer redisClient.Close()

	orderRepo := postgres.NewOrderRepo(pool)
	sessionStore := redis.NewSessionStore(redisClient, cfg.Telegram.SessionTTL)

	// Chain oracle.
	oracle, err := chain.NewOracle(cfg.Chain, log)
	if err != nil {
		log.Fatal().Err(err).Msg("setting up chain oracle")
	}

	// Telegram.
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to telegram")
	}
	notifier := telegram.NewNotifier(api, log)

	// Services.
	verifier := service.NewVerifier(orderRepo, oracle, notifier, cfg.Verifier, log)
	pricing := service.NewPricingService()
	orderService := service.NewOrderService(orderRepo, oracle, pricing, log)
	tokenService := service.NewJWTService(cfg.Admin)
	authService := service.NewAuthService(cfg.Admin, service.NewArgon2Hasher(), tokenService, log)

	bot := telegram.NewBot(api, cfg.Telegram, sessionStore, orderService, verifier, pricing, oracle, log)

	router := handler.SetupRouter(handler.RouterDeps{
		Config:   cfg,
		Auth:     authService,
		Tokens:   tokenService,
		Orders:   orderService,
		Verifier: verifier,
		Healths: []ports.HealthChecker{
			postgres.NewHealthCheck(pool),
			redis.NewHealthCheck(redisClient),
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go bot.Run(ctx)
	go verifier.RunSweeper(ctx)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("admin api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("admin api server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("stopping admin api")
	}

	verifier.StopAll()
	log.Info().Msg("goodbye")
}
