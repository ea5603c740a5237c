package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGet_UntrainedKey(t *testing.T) {
	s := New()

	snap := s.Get("P1")
	assert.Equal(t, StateUntrained, snap.State)
	assert.Nil(t, snap.Elasticity)
	assert.Equal(t, 0, snap.Version)
}

func TestReplaceElasticity_InstallsAndVersions(t *testing.T) {
	s := New()

	first := s.ReplaceElasticity("P1", engine.ElasticityModel{ProductCode: "P1", Elasticity: -2}, t0)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, StateTrained, first.State)

	second := s.ReplaceElasticity("P1", engine.ElasticityModel{ProductCode: "P1", Elasticity: -1.8}, t0.Add(time.Hour))
	assert.Equal(t, 2, second.Version)

	snap := s.Get("P1")
	require.NotNil(t, snap.Elasticity)
	assert.Equal(t, -1.8, snap.Elasticity.Elasticity)
	assert.Equal(t, 2, snap.Version)
}

func TestReplace_DoesNotMutatePriorSnapshot(t *testing.T) {
	s := New()
	s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -2}, t0)

	before := s.Get("P1")
	s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -1.5}, t0.Add(time.Hour))

	// the snapshot taken before the retrain still reads the old fit
	assert.Equal(t, -2.0, before.Elasticity.Elasticity)
	assert.Equal(t, 1, before.Version)
}

func TestGet_StaleAfterDataArrival(t *testing.T) {
	s := New()
	s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -2}, t0)
	assert.Equal(t, StateTrained, s.Get("P1").State)

	s.MarkDataArrival("P1", t0.Add(time.Minute))
	snap := s.Get("P1")
	assert.Equal(t, StateStale, snap.State)
	// stale still serves the model, it is a freshness label not a tombstone
	require.NotNil(t, snap.Elasticity)

	// retraining after the arrival clears the staleness
	s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -2.1}, t0.Add(2*time.Minute))
	assert.Equal(t, StateTrained, s.Get("P1").State)
}

func TestMarkDataArrival_WatermarkOnlyMovesForward(t *testing.T) {
	s := New()
	s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -2}, t0)

	s.MarkDataArrival("P1", t0.Add(time.Hour))
	s.MarkDataArrival("P1", t0.Add(-time.Hour)) // older arrival must not rewind

	assert.Equal(t, StateStale, s.Get("P1").State)
}

func TestMarkDataArrival_UntrainedKeyStaysUntrained(t *testing.T) {
	s := New()
	s.MarkDataArrival("P1", t0)
	assert.Equal(t, StateUntrained, s.Get("P1").State)
}

func TestForecastAndElasticityKeysAreIndependent(t *testing.T) {
	s := New()
	s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -2}, t0)
	s.ReplaceForecast("USD", engine.ForecastModel{Slope: 0.1}, t0)

	s.MarkDataArrival("USD", t0.Add(time.Minute))

	assert.Equal(t, StateTrained, s.Get("P1").State)
	assert.Equal(t, StateStale, s.Get("USD").State)
	require.NotNil(t, s.Get("USD").Forecast)
	assert.Nil(t, s.Get("USD").Elasticity)
}

func TestHydrate_ResumesVersions(t *testing.T) {
	s := New()
	s.Hydrate(
		map[string]Entry{
			"P1": {Elasticity: &engine.ElasticityModel{Elasticity: -2}, Version: 7, TrainedAt: t0},
		},
		map[string]time.Time{"P1": t0.Add(-time.Hour)},
	)

	snap := s.Get("P1")
	assert.Equal(t, 7, snap.Version)
	assert.Equal(t, StateTrained, snap.State)

	// the next retrain continues the persisted sequence
	next := s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -1.9}, t0.Add(time.Hour))
	assert.Equal(t, 8, next.Version)
}

func TestHydrate_ArrivalAfterTrainingReadsStale(t *testing.T) {
	s := New()
	s.Hydrate(
		map[string]Entry{
			"P1": {Elasticity: &engine.ElasticityModel{Elasticity: -2}, Version: 1, TrainedAt: t0},
		},
		map[string]time.Time{"P1": t0.Add(time.Hour)},
	)
	assert.Equal(t, StateStale, s.Get("P1").State)
}

func TestKeys(t *testing.T) {
	s := New()
	s.ReplaceElasticity("P1", engine.ElasticityModel{}, t0)
	s.ReplaceElasticity("P2", engine.ElasticityModel{}, t0)
	s.ReplaceForecast("USD", engine.ForecastModel{}, t0)

	assert.ElementsMatch(t, []string{"P1", "P2", "USD"}, s.Keys())
}

func TestConcurrentReplaceAndRead(t *testing.T) {
	s := New()
	const iterations = 500

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			s.ReplaceElasticity("P1", engine.ElasticityModel{Elasticity: -2}, t0.Add(time.Duration(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			s.ReplaceElasticity("P2", engine.ElasticityModel{Elasticity: -1.5}, t0.Add(time.Duration(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			snap := s.Get("P1")
			if snap.State != StateUntrained {
				// a reader sees either nothing or a complete entry
				assert.NotNil(t, snap.Elasticity)
			}
			s.MarkDataArrival("P1", t0.Add(time.Duration(i)))
		}
	}()
	wg.Wait()

	assert.Equal(t, iterations, s.Get("P1").Version)
	assert.Equal(t, iterations, s.Get("P2").Version)
}
