package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"turfbook/internal/admin"
	"turfbook/internal/api"
	"turfbook/internal/auth"
	"turfbook/internal/booking"
	"turfbook/internal/cache"
	"turfbook/internal/catalog"
	"turfbook/internal/config"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/logging"
	"turfbook/internal/metrics"
	"turfbook/internal/notify"
	"turfbook/internal/session"
	"turfbook/internal/tui"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = cache.Close(redisClient) })()
	}

	bus := events.NewEventBus()
	bus.OnError(func(event *events.Event, err error) {
		logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
	})

	telegram, err := notify.NewTelegramNotifier(cfg.Notifications.TelegramBotToken, cfg.Notifications.TelegramChatID,
		logging.Component(&logger, "telegram"))
	if err != nil {
		// админские оповещения не критичны для клиента
		logger.Warn().Err(err).Msg("telegram notifier init failed, continuing without alerts")
	} else {
		telegram.Subscribe(bus)
	}

	sessions := session.NewProvider(bus, logging.Component(&logger, "session"))

	client := api.NewClient(&cfg.API, sessions, logging.Component(&logger, "api"))
	if cfg.Cache.Enabled {
		client.UseCache(initCache(redisClient, &logger), time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}

	startMetrics(ctx, cfg, &logger)

	notices := notify.NewCenter(logging.Component(&logger, "notify"))
	bookings := booking.NewService(client, bus, time.Duration(cfg.Booking.CancelWindowMinutes)*time.Minute,
		logging.Component(&logger, "booking"))

	app := tui.New(tui.Deps{
		Config:   cfg,
		Logger:   logging.Component(&logger, "tui"),
		Client:   client,
		Sessions: sessions,
		Auth:     auth.NewFlow(client, sessions, notices, cfg.API.CountryCode, logging.Component(&logger, "auth")),
		Catalog:  catalog.NewBrowser(client, client, notices, logging.Component(&logger, "catalog")),
		Bookings: bookings,
		Turfs:    admin.NewTurfManager(client, client, client, bus, logging.Component(&logger, "admin")),
		Notices:  notices,
		Events:   bus,
	})

	logger.Info().Str("base_url", cfg.API.BaseURL).Str("version", cfg.App.Version).Msg("turfbook started")
	if err := app.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info().Msg("turfbook stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "turfbook-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if err := cache.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initCache(redisClient *redis.Client, logger *zerolog.Logger) domain.Cache {
	memory := cache.NewMemoryCache()
	if redisClient == nil {
		return memory
	}
	return cache.NewFailoverCache(cache.NewRedisCache(redisClient), memory, logging.Component(logger, "cache"))
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
