package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-forecast/internal/api/http"
	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/metrics"
	"github.com/i474232898/weather-forecast/internal/scheduler"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/i474232898/weather-forecast/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	m := metrics.New()

	registry := providers.NewRegistry(providers.Credentials{
		OpenWeatherMap: cfg.OpenWeatherMapKey,
		WeatherAPI:     cfg.WeatherAPIKey,
	})
	service := weather.NewService(registry, httpClient, logger.Named("forecast"), m)
	geocoder := providers.NewGeocoder(httpClient, cfg.OpenWeatherMapKey, cfg.GeocodingLimit, logger.Named("geocoding"))

	statusStore := store.NewMemoryStore(cfg.StatusMaxHistory, cfg.StatusMaxAge)
	if cfg.ProbeEnabled() {
		sched := scheduler.New(*cfg.ProbeLocation, cfg.ProbeInterval, service, statusStore, logger.Named("probe"))
		if err := sched.Start(); err != nil {
			logger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	app := httpapi.NewApp(httpapi.Deps{
		Forecasts: service,
		Locations: geocoder,
		Status:    statusStore,
		Logger:    logger.Named("http"),
	}, m)

	go func() {
		logger.Info("starting server",
			zap.String("address", cfg.Address),
			zap.Strings("providers", weather.ProviderNames()))
		if err := app.Listen(cfg.Address); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
