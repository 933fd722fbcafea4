package storage

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vjranagit/tempmon/pkg/types"
)

// Config holds store configuration.
type Config struct {
	// MaxCapacity bounds the number of retained samples; the oldest sample
	// is evicted first once the bound is reached. 0 keeps every sample for
	// the life of the process.
	MaxCapacity int
}

// DefaultConfig returns default store configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxCapacity: 100000,
	}
}

// Store is an ordered, optionally capacity-bounded window of sensor
// samples. A single RWMutex guards every operation for its whole duration:
// readers never observe a partially applied append or eviction, and
// appends never interleave. Nothing blocks or calls out while the lock is
// held.
type Store struct {
	mu      sync.RWMutex
	samples []types.Sample
	maxCap  int
	now     func() time.Time
}

// New creates a store. A zero MaxCapacity is honored as an explicit
// choice, not replaced with a default cap.
func New(cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxCapacity == 0 {
		log.Warn("storage: max_capacity is 0, retained samples grow unbounded for the life of the process")
	}
	return &Store{
		maxCap: cfg.MaxCapacity,
		now:    time.Now,
	}
}

// Append stamps a reading with the current clock and inserts it at the
// tail, evicting from the head if the store is over capacity. The ordering
// invariant relies on the clock being non-decreasing across appends, which
// holds under the expected single-producer usage; Append does not sort
// out-of-order timestamps.
func (s *Store) Append(temperature, humidity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, types.Sample{
		Timestamp:   s.now(),
		Temperature: temperature,
		Humidity:    humidity,
	})
	if s.maxCap > 0 && len(s.samples) > s.maxCap {
		// Reslicing is O(1); the abandoned head is reclaimed when append
		// next reallocates the backing array.
		s.samples = s.samples[len(s.samples)-s.maxCap:]
	}
}

// RangeFetch returns the samples with from <= timestamp <= to in ascending
// chronological order. It fails with ErrInvalidTimeRange when from > to
// and with ErrNoData when the range is well-formed but empty.
func (s *Store) RangeFetch(from, to time.Time) ([]types.Sample, error) {
	if from.After(to) {
		return nil, ErrInvalidTimeRange
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := s.selectRange(from, to)
	if len(selected) == 0 {
		return nil, ErrNoData
	}
	return selected, nil
}

// selectRange copies the samples in [from, to]. The early break relies on
// the ordering invariant. Callers must hold the lock.
func (s *Store) selectRange(from, to time.Time) []types.Sample {
	var selected []types.Sample
	for _, smp := range s.samples {
		if smp.Timestamp.Before(from) {
			continue
		}
		if smp.Timestamp.After(to) {
			break
		}
		selected = append(selected, smp)
	}
	return selected
}

// Latest returns the most recent sample, ok=false when the store is empty.
func (s *Store) Latest() (types.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.samples) == 0 {
		return types.Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Len returns the current sample count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.samples)
}
