package providers

import (
	"encoding/json"
	"fmt"

	"github.com/i474232898/weather-forecast/internal/common"
	"github.com/i474232898/weather-forecast/internal/weather"
)

const (
	weatherAPIForecastURL = "http://api.weatherapi.com/v1/forecast.json"
	weatherAPIDays        = 10
)

// WeatherAPIAdapter implements weather.Adapter for WeatherAPI.com.
type WeatherAPIAdapter struct {
	apiKey  string
	baseURL string
}

func NewWeatherAPIAdapter(apiKey string) *WeatherAPIAdapter {
	return &WeatherAPIAdapter{
		apiKey:  apiKey,
		baseURL: weatherAPIForecastURL,
	}
}

func (a *WeatherAPIAdapter) BuildURL(loc weather.Location) string {
	// WeatherAPI takes "lat,lon" in q; the comma must stay unescaped.
	return fmt.Sprintf("%s?key=%s&q=%s,%s&days=%d&aqi=no&alerts=no",
		a.baseURL,
		a.apiKey,
		common.FormatFloat(loc.Lat),
		common.FormatFloat(loc.Lon),
		weatherAPIDays,
	)
}

type weatherAPIReply struct {
	Forecast *struct {
		ForecastDay []weatherAPIDay `json:"forecastday" validate:"required,dive"`
	} `json:"forecast" validate:"required"`
}

type weatherAPIDay struct {
	DateEpoch *int64 `json:"date_epoch" validate:"required"`
	Day       *struct {
		MinTempC  *float64 `json:"mintemp_c" validate:"required"`
		MaxTempC  *float64 `json:"maxtemp_c" validate:"required"`
		AvgTempC  *float64 `json:"avgtemp_c" validate:"required"`
		Condition *struct {
			Text *string `json:"text" validate:"required"`
		} `json:"condition" validate:"required"`
	} `json:"day" validate:"required"`
}

func (a *WeatherAPIAdapter) ParseReply(body []byte) ([]weather.Forecast, error) {
	var payload weatherAPIReply
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, weather.NewInternalError("unable to process the response from WeatherApi. %v", err)
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, weather.NewInternalError("unable to process the response from WeatherApi. %v", err)
	}

	days := payload.Forecast.ForecastDay
	forecasts := make([]weather.Forecast, 0, len(days))
	for _, item := range days {
		forecasts = append(forecasts, weather.Forecast{
			Timestamp: *item.DateEpoch,
			MinTemp:   *item.Day.MinTempC,
			MaxTemp:   *item.Day.MaxTempC,
			AvgTemp:   *item.Day.AvgTempC,
			Condition: *item.Day.Condition.Text,
		})
	}
	return forecasts, nil
}
