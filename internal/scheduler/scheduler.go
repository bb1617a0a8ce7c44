package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
)

// Resolver is the part of weather.Service the probe needs.
type Resolver interface {
	Resolve(ctx context.Context, providerName string, loc weather.Location, dateText string) (weather.Forecast, error)
}

// Recorder stores probe outcomes.
type Recorder interface {
	Save(result store.ProbeResult)
}

// Scheduler periodically resolves today's forecast from every provider and records
// whether each one answered.
type Scheduler struct {
	scheduler *gocron.Scheduler
	resolver  Resolver
	recorder  Recorder
	location  weather.Location
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new Scheduler.
func New(location weather.Location, interval time.Duration, resolver Resolver, recorder Recorder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		resolver:  resolver,
		recorder:  recorder,
		location:  location,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: probe interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: provider probe started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce probes every provider concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	s.logger.Debug("scheduler: running provider probe")

	date := s.now().UTC().Format(weather.DateLayout)

	var wg sync.WaitGroup
	for _, name := range weather.ProviderNames() {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.probe(name, date)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) probe(provider, date string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	_, err := s.resolver.Resolve(ctx, provider, s.location, date)
	result := store.ProbeResult{
		Provider:  provider,
		CheckedAt: s.now().UTC(),
		OK:        err == nil,
		Latency:   time.Since(start),
	}
	if err != nil {
		result.Kind = weather.KindOf(err).String()
		result.Message = err.Error()
		s.logger.Warn("scheduler: provider probe failed",
			zap.String("provider", provider),
			zap.Error(err))
	}
	s.recorder.Save(result)
}
