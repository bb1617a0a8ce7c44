package weather

import (
	"errors"
)

// ProviderID names one of the supported forecast providers.
type ProviderID int

const (
	OpenWeatherMap ProviderID = iota
	WeatherAPI
)

// ErrInvalidProviderName is returned by ParseProvider for unknown names.
var ErrInvalidProviderName = errors.New("invalid provider name")

var providerIDs = []ProviderID{OpenWeatherMap, WeatherAPI}

// Providers lists every provider in declaration order.
func Providers() []ProviderID {
	out := make([]ProviderID, len(providerIDs))
	copy(out, providerIDs)
	return out
}

// ProviderNames renders Providers.
func ProviderNames() []string {
	names := make([]string, 0, len(providerIDs))
	for _, id := range providerIDs {
		names = append(names, id.String())
	}
	return names
}

func (p ProviderID) String() string {
	switch p {
	case OpenWeatherMap:
		return "OpenWeatherMap"
	case WeatherAPI:
		return "WeatherApi"
	default:
		return "unknown"
	}
}

// ParseProvider is the inverse of ProviderID.String. Matching is exact and case-sensitive.
func ParseProvider(name string) (ProviderID, error) {
	for _, id := range providerIDs {
		if id.String() == name {
			return id, nil
		}
	}
	return 0, ErrInvalidProviderName
}

// Adapter is one provider integration: it knows the provider's request URL and
// how to read its reply. Both methods must be free of side effects.
type Adapter interface {
	BuildURL(loc Location) string
	ParseReply(body []byte) ([]Forecast, error)
}

// AdapterResolver maps a provider to its adapter. It must be total over Providers().
type AdapterResolver interface {
	Adapter(id ProviderID) Adapter
}

// Recorder receives resolution outcomes. A nil Recorder is allowed.
type Recorder interface {
	ObserveUpstream(provider string, seconds float64)
	CountResolution(provider, outcome string)
}
