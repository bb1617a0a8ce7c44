package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
)

var validate = validator.New()

// ForecastResolver is satisfied by *weather.Service.
type ForecastResolver interface {
	Resolve(ctx context.Context, providerName string, loc weather.Location, dateText string) (weather.Forecast, error)
}

// LocationSearcher is satisfied by *providers.Geocoder.
type LocationSearcher interface {
	Search(ctx context.Context, query string) ([]weather.Location, error)
}

// StatusReader is satisfied by *store.MemoryStore.
type StatusReader interface {
	LatestAll() []store.ProbeResult
}

// Deps groups what the routes need. Status may be nil when the probe is disabled.
type Deps struct {
	Forecasts ForecastResolver
	Locations LocationSearcher
	Status    StatusReader
	Logger    *zap.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	v1 := app.Group("/api/v1")

	v1.Get("/providers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"providers": weather.ProviderNames(),
		})
	})

	v1.Get("/providers/status", func(c *fiber.Ctx) error {
		results := []store.ProbeResult{}
		if deps.Status != nil {
			results = deps.Status.LatestAll()
		}
		return c.JSON(fiber.Map{
			"statuses": results,
		})
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		var q locationSearchQuery
		q.Query = c.Query("q")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		locations, err := deps.Locations.Search(c.UserContext(), q.Query)
		if err != nil {
			logger.Error("location search failed", zap.String("query", q.Query), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if locations == nil {
			locations = []weather.Location{}
		}
		return c.JSON(fiber.Map{
			"locations": locations,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := deps.Forecasts.Resolve(c.UserContext(), req.Provider, req.location(), req.Date)
		if err != nil {
			return forecastError(logger, err)
		}
		return c.JSON(forecast)
	})
}

// forecastError maps resolution failures onto HTTP statuses. A *weather.DefectError
// aborts the request by panicking; the recover middleware answers 500.
func forecastError(logger *zap.Logger, err error) error {
	var defect *weather.DefectError
	if errors.As(err, &defect) {
		logger.Error("aborting request on adapter defect", zap.Error(err))
		panic(defect)
	}

	var fe *weather.Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case weather.InvalidArgument:
			return fiber.NewError(fiber.StatusBadRequest, fe.Message)
		default:
			return fiber.NewError(fiber.StatusInternalServerError, fe.Message)
		}
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

type locationSearchQuery struct {
	Query string `validate:"required"`
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Provider string `validate:"required"`
	Date     string `validate:"required"`
	Name     string
	State    string
	Country  string
	Lat      *float64 `validate:"required"`
	Lon      *float64 `validate:"required"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	q.Provider = c.Query("provider")
	q.Date = c.Query("date")
	q.Name = c.Query("name")
	q.State = c.Query("state")
	q.Country = c.Query("country")

	var err error
	if q.Lat, err = parseCoordinate(c.Query("lat")); err != nil {
		return errors.New("lat must be a number")
	}
	if q.Lon, err = parseCoordinate(c.Query("lon")); err != nil {
		return errors.New("lon must be a number")
	}
	return nil
}

func (q forecastQuery) location() weather.Location {
	return weather.Location{
		Name:    q.Name,
		State:   q.State,
		Country: q.Country,
		Lat:     *q.Lat,
		Lon:     *q.Lon,
	}
}

// parseCoordinate returns nil for an absent value so validation reports it as missing.
func parseCoordinate(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
