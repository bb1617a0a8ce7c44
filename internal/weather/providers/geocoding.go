package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast/internal/weather"
)

const (
	geocodingURL          = "http://api.openweathermap.org/geo/1.0/direct"
	defaultGeocodingLimit = 5
)

// Geocoder looks up locations by free-text query using OpenWeatherMap direct geocoding.
type Geocoder struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewGeocoder(client *http.Client, apiKey string, limit int, logger *zap.Logger) *Geocoder {
	if limit <= 0 {
		limit = defaultGeocodingLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Geocoder{
		apiKey:  apiKey,
		baseURL: geocodingURL,
		limit:   limit,
		client:  client,
		circuit: newCircuit("geocoding", logger),
		logger:  logger,
	}
}

// Search returns up to the configured number of matches for query, usually written as
// "City,State,Country" with any part omitted. No match yields an empty slice.
func (g *Geocoder) Search(ctx context.Context, query string) ([]weather.Location, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?q=%s&limit=%d&appid=%s",
			g.baseURL, url.QueryEscape(query), g.limit, g.apiKey)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithBreaker(ctx, g.client, g.circuit, buildRequest)
	if err != nil {
		g.logger.Warn("geocoding request failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("geocoding %q: %w", query, err)
	}
	if resp.status != http.StatusOK {
		return nil, &StatusError{Status: resp.status, Body: string(resp.body)}
	}

	var results []struct {
		Name    string  `json:"name"`
		State   string  `json:"state"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(resp.body, &results); err != nil {
		return nil, fmt.Errorf("decoding geocoding reply: %w", err)
	}

	locations := make([]weather.Location, 0, len(results))
	for _, r := range results {
		locations = append(locations, weather.Location{
			Name:    r.Name,
			State:   r.State,
			Country: r.Country,
			Lat:     r.Lat,
			Lon:     r.Lon,
		})
	}
	return locations, nil
}
