package router

import (
	"sync"
	"time"
)

// breakerState tracks one provider's recent failures. Five consecutive
// failures open the circuit for the cooldown period; any success closes it.
// Unrecoverable failures (bad credentials) open it immediately.
type breakerState struct {
	consecutive int
	openUntil   time.Time
}

type breakers struct {
	mu        sync.Mutex
	states    map[string]*breakerState
	threshold int
	cooldown  time.Duration
	enabled   bool
}

func newBreakers(enabled bool, threshold int, cooldown time.Duration) *breakers {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}
	return &breakers{
		states:    make(map[string]*breakerState),
		threshold: threshold,
		cooldown:  cooldown,
		enabled:   enabled,
	}
}

// open reports whether the provider should be skipped. An elapsed cooldown
// makes the provider eligible again; the next attempt decides its fate.
func (b *breakers) open(name string) bool {
	if !b.enabled {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[name]
	if !ok {
		return false
	}
	return time.Now().Before(s.openUntil)
}

// success closes the circuit and clears the failure streak.
func (b *breakers) success(name string) {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, name)
}

// failure records one failed call. trip forces the circuit open regardless
// of the streak.
func (b *breakers) failure(name string, trip bool) {
	if !b.enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[name]
	if !ok {
		s = &breakerState{}
		b.states[name] = s
	}
	s.consecutive++
	if trip || s.consecutive >= b.threshold {
		s.openUntil = time.Now().Add(b.cooldown)
	}
}

// snapshot reports the providers whose circuits are currently open.
func (b *breakers) snapshot() map[string]time.Time {
	if !b.enabled {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]time.Time)
	now := time.Now()
	for name, s := range b.states {
		if now.Before(s.openUntil) {
			out[name] = s.openUntil
		}
	}
	return out
}
