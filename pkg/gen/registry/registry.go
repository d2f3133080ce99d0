// Package registry holds the set of known provider adapters indexed by
// capability. A Registry is an explicit instance wired at startup; there is
// no package-level global.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
)

type entry struct {
	provider gen.Provider
	priority int
	caps     map[gen.Capability]bool
	seq      int // registration order, breaks priority ties
}

// Registry maps provider names to adapters with priorities and declared
// capabilities. Lower priority is tried first.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextSeq int
}

// Info is the reporting view of one registration.
type Info struct {
	Name         string           `json:"name"`
	Priority     int              `json:"priority"`
	Capabilities []gen.Capability `json:"capabilities"`
	Configured   bool             `json:"configured"`
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds or updates a provider. Registration is an idempotent upsert
// keyed by the provider's name: registering the same name again replaces its
// priority and capability set. The provider must actually implement the
// interface behind every declared capability.
func (r *Registry) Register(p gen.Provider, priority int, caps ...gen.Capability) error {
	if p == nil {
		return fmt.Errorf("nil provider")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider has empty name")
	}
	if len(caps) == 0 {
		return fmt.Errorf("provider %q registered without capabilities", name)
	}

	capSet := make(map[gen.Capability]bool, len(caps))
	for _, c := range caps {
		if !gen.Supports(p, c) {
			return fmt.Errorf("provider %q does not implement capability %q", name, c)
		}
		capSet[c] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[name]; ok {
		existing.provider = p
		existing.priority = priority
		existing.caps = capSet
		return nil
	}
	r.entries[name] = &entry{provider: p, priority: priority, caps: capSet, seq: r.nextSeq}
	r.nextSeq++
	return nil
}

// Ordered returns the providers serving cap whose credentials are currently
// configured, sorted ascending by priority (registration order breaks ties).
// An empty chain is a normal value, not an error.
func (r *Registry) Ordered(cap gen.Capability) []gen.Provider {
	r.mu.RLock()
	var matched []*entry
	for _, e := range r.entries {
		if e.caps[cap] {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority < matched[j].priority
		}
		return matched[i].seq < matched[j].seq
	})

	// Configured() may hit adapter-internal state; call it outside the lock.
	providers := make([]gen.Provider, 0, len(matched))
	for _, e := range matched {
		if !e.provider.Configured() {
			continue
		}
		providers = append(providers, e.provider)
	}
	return providers
}

// Lookup fetches one provider by name.
func (r *Registry) Lookup(name string) (gen.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// Snapshot reports every registration in priority order, including
// unconfigured providers. Used by status endpoints.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})

	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		caps := make([]gen.Capability, 0, len(e.caps))
		for _, c := range gen.Capabilities() {
			if e.caps[c] {
				caps = append(caps, c)
			}
		}
		infos = append(infos, Info{
			Name:         e.provider.Name(),
			Priority:     e.priority,
			Capabilities: caps,
			Configured:   e.provider.Configured(),
		})
	}
	return infos
}

// Names returns all registered provider names in priority order.
func (r *Registry) Names() []string {
	infos := r.Snapshot()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}
