package api

import (
	"net/http"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/registry"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
)

// CircuitReporter exposes the router's open breaker view.
type CircuitReporter interface {
	OpenCircuits() map[string]time.Time
}

// ProvidersHandler serves the provider status endpoint.
type ProvidersHandler struct {
	reg      *registry.Registry
	circuits CircuitReporter
	tracker  *tracker.Tracker
}

// NewProvidersHandler creates a ProvidersHandler.
func NewProvidersHandler(reg *registry.Registry, circuits CircuitReporter, t *tracker.Tracker) *ProvidersHandler {
	return &ProvidersHandler{reg: reg, circuits: circuits, tracker: t}
}

type providerDTO struct {
	registry.Info
	CircuitOpen  bool                   `json:"circuit_open"`
	CircuitUntil *time.Time             `json:"circuit_until,omitempty"`
	Stats        *tracker.ProviderStats `json:"stats,omitempty"`
}

// ServeHTTP serves GET /api/providers.
func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	open := h.circuits.OpenCircuits()
	stats := h.tracker.Snapshot()

	infos := h.reg.Snapshot()
	out := make([]providerDTO, 0, len(infos))
	for _, info := range infos {
		dto := providerDTO{Info: info}
		if until, ok := open[info.Name]; ok {
			dto.CircuitOpen = true
			dto.CircuitUntil = &until
		}
		if s, ok := stats[info.Name]; ok {
			dto.Stats = &s
		}
		out = append(out, dto)
	}

	writeJSON(w, http.StatusOK, out)
}
