package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the only accepted spelling of a requested date: mm.dd.yyyy.
const DateLayout = "01.02.2006"

// Service resolves a (provider, location, date) request into a single day's forecast.
// It holds only read-only collaborators and is safe for concurrent use.
type Service struct {
	adapters AdapterResolver
	client   *http.Client
	logger   *zap.Logger
	recorder Recorder
}

// NewService creates a new Service. A nil client falls back to http.DefaultClient,
// a nil logger to a no-op logger.
func NewService(adapters AdapterResolver, client *http.Client, logger *zap.Logger, recorder Recorder) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		adapters: adapters,
		client:   client,
		logger:   logger,
		recorder: recorder,
	}
}

// ParseDate parses text as mm.dd.yyyy into a UTC midnight.
func ParseDate(text string) (time.Time, error) {
	return time.Parse(DateLayout, text)
}

// Resolve fetches the forecast window from the named provider and returns the day
// matching dateText.
//
// Recoverable failures are returned as *Error. A *DefectError is returned when the
// adapter builds a URL that cannot be requested at all.
func (s *Service) Resolve(ctx context.Context, providerName string, loc Location, dateText string) (Forecast, error) {
	start := time.Now()
	forecast, err := s.resolve(ctx, providerName, loc, dateText)

	outcome := "ok"
	var defect *DefectError
	switch {
	case errors.As(err, &defect):
		outcome = "defect"
		s.logger.Error("adapter built an unusable url",
			zap.String("provider", providerName),
			zap.String("url", defect.URL),
			zap.Error(defect.Err))
	case err != nil:
		outcome = KindOf(err).String()
		s.logger.Debug("forecast resolution failed",
			zap.String("provider", providerName),
			zap.String("date", dateText),
			zap.Error(err))
	default:
		s.logger.Debug("forecast resolved",
			zap.String("provider", providerName),
			zap.String("date", dateText),
			zap.Duration("elapsed", time.Since(start)))
	}
	if s.recorder != nil {
		label := "unknown"
		if id, perr := ParseProvider(providerName); perr == nil {
			label = id.String()
		}
		s.recorder.CountResolution(label, outcome)
	}

	return forecast, err
}

func (s *Service) resolve(ctx context.Context, providerName string, loc Location, dateText string) (Forecast, error) {
	requested, err := ParseDate(dateText)
	if err != nil {
		return Forecast{}, invalidArgument(dateNotFoundMessage)
	}

	id, err := ParseProvider(providerName)
	if err != nil {
		return Forecast{}, invalidArgument(invalidProviderMessage)
	}
	adapter := s.adapters.Adapter(id)

	rawURL := adapter.BuildURL(loc)
	u, err := checkURL(rawURL)
	if err != nil {
		return Forecast{}, &DefectError{Provider: id, URL: rawURL, Err: err}
	}

	status, body, err := s.get(ctx, id, u)
	if err != nil {
		return Forecast{}, err
	}

	switch status {
	case http.StatusOK:
		forecasts, err := adapter.ParseReply(body)
		if err != nil {
			var fe *Error
			if errors.As(err, &fe) {
				return Forecast{}, fe
			}
			return Forecast{}, internalError("unable to process the response from %s: %v", id, err)
		}
		return selectDay(forecasts, requested)
	case http.StatusBadRequest:
		return Forecast{}, invalidArgument(string(body))
	default:
		s.logger.Warn("unexpected upstream status",
			zap.String("provider", id.String()),
			zap.Int("status", status))
		return Forecast{}, &Error{Kind: Internal, Message: string(body)}
	}
}

// get performs the single outbound request of a resolution. It never retries.
func (s *Service) get(ctx context.Context, id ProviderID, u *url.URL) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, internalError("unable to make request. %v", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if s.recorder != nil {
		s.recorder.ObserveUpstream(id.String(), time.Since(start).Seconds())
	}
	if err != nil {
		s.logger.Warn("provider request failed",
			zap.String("provider", id.String()),
			zap.Error(err))
		return 0, nil, internalError("unable to make request. %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, internalError("unable to read the response from %s. %v", id, err)
	}
	return resp.StatusCode, body, nil
}

// selectDay returns the first forecast whose UTC date equals requested.
func selectDay(forecasts []Forecast, requested time.Time) (Forecast, error) {
	for _, f := range forecasts {
		if f.Day().Equal(requested) {
			return f, nil
		}
	}
	return Forecast{}, invalidArgument(dateNotFoundMessage)
}

func checkURL(raw string) (*url.URL, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}
