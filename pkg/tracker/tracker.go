// Package tracker collects per-provider usage statistics: attempts,
// outcomes by failure class, cache traffic, and local fallback syntheses.
// Counters are cheap enough to record on every call; the dashboard and the
// stats endpoint read snapshots.
package tracker

import (
	"sync"
	"sync/atomic"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
)

// Tracker tracks usage statistics per provider.
type Tracker struct {
	mu        sync.RWMutex
	stats     map[string]*ProviderStats
	fallbacks map[gen.Capability]*int64
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	Attempts       int64
	Successes      int64
	Failures       int64
	RateLimited    int64
	Timeouts       int64
	AuthErrors     int64
	QuotaErrors    int64
	QualityRejects int64
	CacheHits      int64
	CacheMisses    int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats:     make(map[string]*ProviderStats),
		fallbacks: make(map[gen.Capability]*int64),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackAttempt records one call handed to a provider.
func (t *Tracker) TrackAttempt(provider string) {
	atomic.AddInt64(&t.getStats(provider).Attempts, 1)
}

// TrackSuccess records a provider call that produced usable output.
func (t *Tracker) TrackSuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).Successes, 1)
}

// TrackFailure records a failed provider call under its failure class.
func (t *Tracker) TrackFailure(provider string, class gen.FailureClass) {
	s := t.getStats(provider)
	atomic.AddInt64(&s.Failures, 1)
	switch class {
	case gen.FailureRateLimited:
		atomic.AddInt64(&s.RateLimited, 1)
	case gen.FailureTimeout:
		atomic.AddInt64(&s.Timeouts, 1)
	case gen.FailureCredentialInvalid, gen.FailureAuthExpired:
		atomic.AddInt64(&s.AuthErrors, 1)
	case gen.FailureQuotaExceeded:
		atomic.AddInt64(&s.QuotaErrors, 1)
	case gen.FailureQualityGate:
		atomic.AddInt64(&s.QualityRejects, 1)
	}
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheHits, 1)
}

func (t *Tracker) TrackCacheMiss(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheMisses, 1)
}

// TrackFallback records one locally synthesized result for a capability.
func (t *Tracker) TrackFallback(cap gen.Capability) {
	t.mu.RLock()
	c, ok := t.fallbacks[cap]
	t.mu.RUnlock()
	if !ok {
		t.mu.Lock()
		if c, ok = t.fallbacks[cap]; !ok {
			c = new(int64)
			t.fallbacks[cap] = c
		}
		t.mu.Unlock()
	}
	atomic.AddInt64(c, 1)
}

// Snapshot returns a copy of the current per-provider stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats)
	for k, v := range t.stats {
		result[k] = ProviderStats{
			Attempts:       atomic.LoadInt64(&v.Attempts),
			Successes:      atomic.LoadInt64(&v.Successes),
			Failures:       atomic.LoadInt64(&v.Failures),
			RateLimited:    atomic.LoadInt64(&v.RateLimited),
			Timeouts:       atomic.LoadInt64(&v.Timeouts),
			AuthErrors:     atomic.LoadInt64(&v.AuthErrors),
			QuotaErrors:    atomic.LoadInt64(&v.QuotaErrors),
			QualityRejects: atomic.LoadInt64(&v.QualityRejects),
			CacheHits:      atomic.LoadInt64(&v.CacheHits),
			CacheMisses:    atomic.LoadInt64(&v.CacheMisses),
		}
	}
	return result
}

// FallbackSnapshot returns how many results each capability has synthesized
// locally.
func (t *Tracker) FallbackSnapshot() map[gen.Capability]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[gen.Capability]int64, len(t.fallbacks))
	for cap, c := range t.fallbacks {
		result[cap] = atomic.LoadInt64(c)
	}
	return result
}
