package weather

import (
	"time"
)

// Location identifies the place a forecast is requested for.
// Coordinates are passed through to providers unvalidated.
type Location struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Forecast is the normalized forecast for a single calendar day.
type Forecast struct {
	Timestamp int64   `json:"timestamp"` // epoch seconds
	MinTemp   float64 `json:"min_temp"`  // °C
	MaxTemp   float64 `json:"max_temp"`  // °C
	AvgTemp   float64 `json:"avg_temp"`  // °C
	Condition string  `json:"condition"`
}

// Day returns the UTC calendar date the forecast belongs to.
func (f Forecast) Day() time.Time {
	ts := time.Unix(f.Timestamp, 0).UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
