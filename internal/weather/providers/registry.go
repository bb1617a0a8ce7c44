package providers

import (
	"fmt"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Credentials holds one API key per forecast provider.
type Credentials struct {
	OpenWeatherMap string
	WeatherAPI     string
}

// Registry owns one adapter per provider. It is built once at startup and only read
// afterwards.
type Registry struct {
	openWeather *OpenWeatherAdapter
	weatherAPI  *WeatherAPIAdapter
}

func NewRegistry(creds Credentials) *Registry {
	return &Registry{
		openWeather: NewOpenWeatherAdapter(creds.OpenWeatherMap),
		weatherAPI:  NewWeatherAPIAdapter(creds.WeatherAPI),
	}
}

// Adapter returns the adapter for id. Every weather.ProviderID has one.
func (r *Registry) Adapter(id weather.ProviderID) weather.Adapter {
	switch id {
	case weather.OpenWeatherMap:
		return r.openWeather
	case weather.WeatherAPI:
		return r.weatherAPI
	}
	panic(fmt.Sprintf("providers: no adapter registered for provider %d", int(id)))
}
