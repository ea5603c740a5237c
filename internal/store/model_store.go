// Package store holds fitted model parameters keyed by product code. It
// replaces the original ad-hoc global registry with atomic per-key
// read/replace semantics: entries are immutable snapshots swapped whole under
// a short lock, never mutated, and the lock is never held across a fit.
package store

import (
	"sync"
	"time"

	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
)

// State is the per-key freshness state carried as data on every read.
type State string

const (
	StateUntrained State = "untrained"
	StateTrained   State = "trained"
	StateStale     State = "stale"
)

// Entry is one immutable trained snapshot. Exactly one of Elasticity /
// Forecast / PartPrice is set, depending on the key's kind.
type Entry struct {
	Elasticity *engine.ElasticityModel
	Forecast   *engine.ForecastModel
	PartPrice  *engine.PartPriceModel
	Version    int
	TrainedAt  time.Time
}

// Snapshot is what readers get: the entry (zero-valued when untrained) plus
// the freshness state resolved at read time.
type Snapshot struct {
	Entry
	State State
}

// ModelStore is safe for concurrent use. Fits for different keys are fully
// independent; a fit and a read on the same key serialize only on the swap.
type ModelStore struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	arrivals map[string]time.Time // newest underlying-data timestamp per key
}

func New() *ModelStore {
	return &ModelStore{
		entries:  make(map[string]Entry),
		arrivals: make(map[string]time.Time),
	}
}

// Get returns the current snapshot for a key. A trained entry whose
// underlying data arrived after the fit reads as Stale — it still serves,
// flagged, until a retrain replaces it.
func (s *ModelStore) Get(key string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return Snapshot{State: StateUntrained}
	}
	state := StateTrained
	if arrived, seen := s.arrivals[key]; seen && arrived.After(e.TrainedAt) {
		state = StateStale
	}
	return Snapshot{Entry: e, State: state}
}

// ReplaceElasticity atomically installs a freshly fitted elasticity model,
// superseding (never mutating) any previous entry, and returns the installed
// snapshot. The version increments per key across the process lifetime.
func (s *ModelStore) ReplaceElasticity(key string, m engine.ElasticityModel, trainedAt time.Time) Snapshot {
	return s.replace(key, Entry{Elasticity: &m, TrainedAt: trainedAt})
}

// ReplaceForecast is ReplaceElasticity for the rate forecaster.
func (s *ModelStore) ReplaceForecast(key string, m engine.ForecastModel, trainedAt time.Time) Snapshot {
	return s.replace(key, Entry{Forecast: &m, TrainedAt: trainedAt})
}

// ReplacePartPrice is ReplaceElasticity for a component price model.
func (s *ModelStore) ReplacePartPrice(key string, m engine.PartPriceModel, trainedAt time.Time) Snapshot {
	return s.replace(key, Entry{PartPrice: &m, TrainedAt: trainedAt})
}

func (s *ModelStore) replace(key string, e Entry) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Version = s.entries[key].Version + 1
	s.entries[key] = e

	state := StateTrained
	if arrived, seen := s.arrivals[key]; seen && arrived.After(e.TrainedAt) {
		state = StateStale
	}
	return Snapshot{Entry: e, State: state}
}

// MarkDataArrival records that new underlying data for a key arrived at the
// given time. It only moves the watermark forward.
func (s *ModelStore) MarkDataArrival(key string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.arrivals[key]; !ok || at.After(current) {
		s.arrivals[key] = at
	}
}

// Hydrate seeds the store from persisted state on boot. Versions resume from
// the persisted values so supersession stays monotonic across restarts.
func (s *ModelStore) Hydrate(entries map[string]Entry, arrivals map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range entries {
		s.entries[k] = e
	}
	for k, at := range arrivals {
		if current, ok := s.arrivals[k]; !ok || at.After(current) {
			s.arrivals[k] = at
		}
	}
}

// Keys lists every key holding a trained entry.
func (s *ModelStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}
