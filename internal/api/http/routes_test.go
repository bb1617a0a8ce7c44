package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast/internal/metrics"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/i474232898/weather-forecast/internal/weather/providers"
)

type fakeResolver struct {
	forecast weather.Forecast
	err      error

	gotProvider string
	gotLoc      weather.Location
	gotDate     string
}

func (f *fakeResolver) Resolve(_ context.Context, provider string, loc weather.Location, date string) (weather.Forecast, error) {
	f.gotProvider, f.gotLoc, f.gotDate = provider, loc, date
	return f.forecast, f.err
}

type fakeSearcher struct {
	locations []weather.Location
	err       error
}

func (f fakeSearcher) Search(context.Context, string) ([]weather.Location, error) {
	return f.locations, f.err
}

// mockRoundTripper answers outbound provider calls without touching the network.
type mockRoundTripper struct {
	status int
	body   string
	urls   []string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.urls = append(m.urls, req.URL.String())
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func doGet(t *testing.T, deps Deps, target string) (int, []byte) {
	t.Helper()
	app := NewApp(deps, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, body
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		t.Fatalf("decoding error body %q: %v", body, err)
	}
	return eb
}

func TestProvidersEndpoint(t *testing.T) {
	status, body := doGet(t, Deps{}, "/api/v1/providers")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}

	var got struct {
		Providers []string `json:"providers"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(got.Providers, ",") != "OpenWeatherMap,WeatherApi" {
		t.Fatalf("unexpected providers %v", got.Providers)
	}
}

func TestForecastEndpoint(t *testing.T) {
	resolver := &fakeResolver{forecast: weather.Forecast{
		Timestamp: 946684800, MinTemp: 19.5, MaxTemp: 20.5, AvgTemp: 20, Condition: "Sky is clear, warm and good",
	}}

	status, body := doGet(t, Deps{Forecasts: resolver},
		"/api/v1/forecast?provider=OpenWeatherMap&date=01.01.2000&lat=2.2&lon=1.1&name=Name&country=Country")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, status, body)
	}

	var got weather.Forecast
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != resolver.forecast {
		t.Fatalf("expected %+v, got %+v", resolver.forecast, got)
	}
	if resolver.gotProvider != "OpenWeatherMap" || resolver.gotDate != "01.01.2000" {
		t.Fatalf("unexpected call %q %q", resolver.gotProvider, resolver.gotDate)
	}
	want := weather.Location{Name: "Name", Country: "Country", Lat: 2.2, Lon: 1.1}
	if resolver.gotLoc != want {
		t.Fatalf("expected location %+v, got %+v", want, resolver.gotLoc)
	}
}

func TestForecastEndpointValidation(t *testing.T) {
	targets := []string{
		"/api/v1/forecast?provider=OpenWeatherMap&date=01.01.2000&lon=1.1",
		"/api/v1/forecast?provider=OpenWeatherMap&date=01.01.2000&lat=north&lon=1.1",
		"/api/v1/forecast?date=01.01.2000&lat=2.2&lon=1.1",
		"/api/v1/forecast?provider=OpenWeatherMap&lat=2.2&lon=1.1",
	}
	for _, target := range targets {
		resolver := &fakeResolver{}
		status, _ := doGet(t, Deps{Forecasts: resolver}, target)
		if status != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, status)
		}
		if resolver.gotProvider != "" {
			t.Errorf("%s: resolver should not be called", target)
		}
	}
}

func TestForecastEndpointErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid argument", &weather.Error{Kind: weather.InvalidArgument, Message: "invalid weather provider passed"}, http.StatusBadRequest, "invalid weather provider passed"},
		{"internal", weather.NewInternalError("unable to make request. %s", "refused"), http.StatusInternalServerError, "unable to make request. refused"},
		{"defect", &weather.DefectError{Provider: weather.WeatherAPI, URL: "bad url?key=secret", Err: errors.New("parse")}, http.StatusInternalServerError, "internal fault"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doGet(t, Deps{Forecasts: &fakeResolver{err: tc.err}},
				"/api/v1/forecast?provider=WeatherApi&date=01.01.2000&lat=2.2&lon=1.1")
			if status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, status)
			}
			eb := decodeError(t, body)
			if !eb.Error || eb.Message != tc.msg {
				t.Fatalf("unexpected error body %+v", eb)
			}
			if strings.Contains(string(body), "secret") {
				t.Fatal("credential leaked into the response")
			}
		})
	}
}

func TestForecastEndpointAgainstProviders(t *testing.T) {
	upstream := &mockRoundTripper{
		status: http.StatusOK,
		body: `{"forecast":{"forecastday":[
			{"date_epoch":946684800,"day":{"mintemp_c":19.5,"maxtemp_c":20.5,"avgtemp_c":20.0,"condition":{"text":"It's warm and good!"}}}
		]}}`,
	}
	registry := providers.NewRegistry(providers.Credentials{OpenWeatherMap: "owm", WeatherAPI: "wapi"})
	svc := weather.NewService(registry, &http.Client{Transport: upstream}, nil, metrics.New())

	status, body := doGet(t, Deps{Forecasts: svc},
		"/api/v1/forecast?provider=WeatherApi&date=01.01.2000&lat=2.2&lon=1.1")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, status, body)
	}
	var got weather.Forecast
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Condition != "It's warm and good!" || got.Timestamp != 946684800 {
		t.Fatalf("unexpected forecast %+v", got)
	}
	if len(upstream.urls) != 1 || upstream.urls[0] != "http://api.weatherapi.com/v1/forecast.json?key=wapi&q=2.2,1.1&days=10&aqi=no&alerts=no" {
		t.Fatalf("unexpected upstream calls %v", upstream.urls)
	}

	upstream.status = http.StatusBadRequest
	upstream.body = `{"error":{"code":1006,"message":"No matching location found."}}`
	status, body = doGet(t, Deps{Forecasts: svc},
		"/api/v1/forecast?provider=WeatherApi&date=01.01.2000&lat=2.2&lon=1.1")
	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, status)
	}
	if eb := decodeError(t, body); eb.Message != upstream.body {
		t.Fatalf("expected upstream body as message, got %q", eb.Message)
	}
}

func TestLocationsEndpoint(t *testing.T) {
	searcher := fakeSearcher{locations: []weather.Location{{Name: "Paris", Country: "FR", Lat: 48.85, Lon: 2.35}}}

	status, body := doGet(t, Deps{Locations: searcher}, "/api/v1/locations?q=Paris")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	var got struct {
		Locations []weather.Location `json:"locations"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Locations) != 1 || got.Locations[0].Name != "Paris" {
		t.Fatalf("unexpected locations %+v", got.Locations)
	}

	status, _ = doGet(t, Deps{Locations: searcher}, "/api/v1/locations")
	if status != http.StatusBadRequest {
		t.Fatalf("expected status %d without q, got %d", http.StatusBadRequest, status)
	}

	status, _ = doGet(t, Deps{Locations: fakeSearcher{err: errors.New("geocoder down")}}, "/api/v1/locations?q=Paris")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected status %d on search failure, got %d", http.StatusInternalServerError, status)
	}
}

func TestProviderStatusEndpoint(t *testing.T) {
	statuses := store.NewMemoryStore(10, time.Hour)
	statuses.Save(store.ProbeResult{Provider: "WeatherApi", CheckedAt: time.Now().UTC(), OK: true})

	status, body := doGet(t, Deps{Status: statuses}, "/api/v1/providers/status")
	if status != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, status)
	}
	var got struct {
		Statuses []store.ProbeResult `json:"statuses"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Statuses) != 1 || !got.Statuses[0].OK {
		t.Fatalf("unexpected statuses %+v", got.Statuses)
	}

	status, body = doGet(t, Deps{}, "/api/v1/providers/status")
	if status != http.StatusOK || !strings.Contains(string(body), `"statuses":[]`) {
		t.Fatalf("expected empty status list, got %d %s", status, body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := NewApp(Deps{}, metrics.New())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("unexpected metrics response %d", resp.StatusCode)
	}
}
