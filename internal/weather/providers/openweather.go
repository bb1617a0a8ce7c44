package providers

import (
	"encoding/json"
	"fmt"

	"github.com/i474232898/weather-forecast/internal/common"
	"github.com/i474232898/weather-forecast/internal/weather"
)

const (
	openWeatherForecastURL = "https://api.openweathermap.org/data/2.5/onecall"
	openWeatherExcludes    = "current,minutely,hourly"
	openWeatherUnits       = "metric"
)

// OpenWeatherAdapter implements weather.Adapter for the OpenWeatherMap One Call API.
type OpenWeatherAdapter struct {
	apiKey  string
	baseURL string
}

func NewOpenWeatherAdapter(apiKey string) *OpenWeatherAdapter {
	return &OpenWeatherAdapter{
		apiKey:  apiKey,
		baseURL: openWeatherForecastURL,
	}
}

func (a *OpenWeatherAdapter) BuildURL(loc weather.Location) string {
	// Built by hand: url.Values would sort the keys and escape the commas.
	return fmt.Sprintf("%s?lat=%s&lon=%s&units=%s&exclude=%s&appid=%s",
		a.baseURL,
		common.FormatFloat(loc.Lat),
		common.FormatFloat(loc.Lon),
		openWeatherUnits,
		openWeatherExcludes,
		a.apiKey,
	)
}

type openWeatherReply struct {
	Daily []openWeatherDay `json:"daily" validate:"required,dive"`
}

type openWeatherDay struct {
	Dt   *int64 `json:"dt" validate:"required"`
	Temp *struct {
		Min *float64 `json:"min" validate:"required"`
		Max *float64 `json:"max" validate:"required"`
		Day *float64 `json:"day" validate:"required"`
	} `json:"temp" validate:"required"`
	Weather []struct {
		Main        *string `json:"main" validate:"required"`
		Description *string `json:"description" validate:"required"`
	} `json:"weather" validate:"required,min=1,dive"`
}

func (a *OpenWeatherAdapter) ParseReply(body []byte) ([]weather.Forecast, error) {
	var payload openWeatherReply
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, weather.NewInternalError("unable to process the response from OpenWeatherMap. %v", err)
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, weather.NewInternalError("unable to process the response from OpenWeatherMap. %v", err)
	}

	forecasts := make([]weather.Forecast, 0, len(payload.Daily))
	for _, day := range payload.Daily {
		cond := day.Weather[0]
		forecasts = append(forecasts, weather.Forecast{
			Timestamp: *day.Dt,
			MinTemp:   *day.Temp.Min,
			MaxTemp:   *day.Temp.Max,
			AvgTemp:   *day.Temp.Day,
			Condition: fmt.Sprintf("%s, %s", *cond.Main, *cond.Description),
		})
	}
	return forecasts, nil
}
