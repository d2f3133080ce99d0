// Package jobs tracks asynchronous assembly work. Handlers create a job,
// kick off the work in a goroutine, and poll the job by ID until it settles.
// Settled jobs linger for the store TTL so late pollers still see the result.
package jobs

import (
	"sync"
	"time"
)

// cleanupInterval is how often Get() triggers lazy eviction of expired entries.
const cleanupInterval = 100

type entry[T any] struct {
	value      *T
	lastAccess time.Time
}

// Store is a typed, thread-safe job store. Reads return a copy so callers
// never observe a job mid-update; all mutation goes through Update.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[T]
	ttl      time.Duration
	getCalls int
}

// NewStore creates a Store that evicts entries untouched longer than ttl.
func NewStore[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
	}
}

// Put stores v under id, replacing any previous value.
func (s *Store[T]) Put(id string, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry[T]{value: v, lastAccess: time.Now()}
}

// Get returns a copy of the value for id. Each call refreshes the entry's
// last-access timestamp.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getCalls%cleanupInterval == 0 {
		s.cleanupLocked()
	}

	e, ok := s.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastAccess = time.Now()
	return *e.value, true
}

// Update applies fn to the value for id under the store lock. It reports
// whether the entry existed.
func (s *Store[T]) Update(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	fn(e.value)
	e.lastAccess = time.Now()
	return true
}

// Cleanup evicts all entries that have been untouched longer than the TTL.
func (s *Store[T]) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store[T]) cleanupLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of live entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
