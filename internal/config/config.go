package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/weather-forecast/internal/weather"
)

type AppConfig struct {
	OpenWeatherMapKey string
	WeatherAPIKey     string

	// Address the HTTP server binds to.
	Address string

	// HTTPTimeout bounds every outbound provider and geocoding request.
	HTTPTimeout time.Duration

	LogLevel zapcore.Level

	GeocodingLimit int

	// Provider probe. Disabled when ProbeInterval is zero or ProbeLocation is nil.
	ProbeInterval time.Duration
	ProbeLocation *weather.Location

	// Probe result retention.
	StatusMaxHistory int           // max number of results per provider (0 = unlimited)
	StatusMaxAge     time.Duration // max age of results (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherMapKey = os.Getenv("OPENWEATHERMAP_AUTHORIZATION")
	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_AUTHORIZATION")
	cfg.Address = getenvDefault("WEATHER_SERVER_ADDRESS", ":8080")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	level, err := zapcore.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if cfg.GeocodingLimit, err = getenvInt("GEOCODING_LIMIT", 5); err != nil {
		return nil, err
	}

	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if v := os.Getenv("PROBE_LOCATION"); v != "" {
		loc, err := parseLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROBE_LOCATION: %w", err)
		}
		cfg.ProbeLocation = &loc
	}

	// roughly 24h at 15-minute intervals
	if cfg.StatusMaxHistory, err = getenvInt("STATUS_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.StatusMaxAge, err = getenvDuration("STATUS_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ProbeEnabled reports whether the provider probe should run.
func (c *AppConfig) ProbeEnabled() bool {
	return c.ProbeInterval > 0 && c.ProbeLocation != nil
}

// parseLocation reads "lat,lon".
func parseLocation(v string) (weather.Location, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return weather.Location{}, fmt.Errorf("expected lat,lon, got %q", v)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return weather.Location{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return weather.Location{}, fmt.Errorf("longitude: %w", err)
	}
	return weather.Location{Name: "probe", Lat: lat, Lon: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
