package store

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe result is available for a provider.
	ErrNotFound = errors.New("no probe results for provider")
)

// ProbeResult is the outcome of one scheduled forecast resolution against a provider.
type ProbeResult struct {
	Provider  string        `json:"provider"`
	CheckedAt time.Time     `json:"checkedAt"` // always UTC
	OK        bool          `json:"ok"`
	Kind      string        `json:"kind,omitempty"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latencyNs"`
}

// ProbeHistory holds a time-ordered list of probe results for a provider.
type ProbeHistory struct {
	Results []ProbeResult
}

// MemoryStore is a concurrency-safe in-memory store of provider probe results.
type MemoryStore struct {
	mu sync.RWMutex

	// key: provider name
	data map[string]*ProbeHistory

	maxHistory int           // max number of results per provider
	maxAge     time.Duration // optional max age for results
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ProbeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a result for its provider and enforces retention.
func (s *MemoryStore) Save(result ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[result.Provider]
	if !ok {
		history = &ProbeHistory{}
		s.data[result.Provider] = history
	}

	history.Results = append(history.Results, result)

	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		history.Results = history.Results[over:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results); i++ {
			if !history.Results[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		// The newest result is always kept, however old.
		if i == len(history.Results) {
			i--
		}
		history.Results = history.Results[i:]
	}
}

// Latest returns the most recent result for a provider.
func (s *MemoryStore) Latest(provider string) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[provider]
	if !ok || len(history.Results) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// LatestAll returns the most recent result of every provider, sorted by provider name.
func (s *MemoryStore) LatestAll() []ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProbeResult, 0, len(s.data))
	for _, history := range s.data {
		if len(history.Results) > 0 {
			out = append(out, history.Results[len(history.Results)-1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// History returns a copy of all retained results for a provider, oldest first.
func (s *MemoryStore) History(provider string) ([]ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[provider]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}
	out := make([]ProbeResult, len(history.Results))
	copy(out, history.Results)
	return out, nil
}
