package api

import (
	"net/http"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/logging"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
)

// StatsHandler serves the usage statistics endpoint.
type StatsHandler struct {
	tracker *tracker.Tracker
	capture *logging.LogCaptureWriter
}

// NewStatsHandler creates a StatsHandler. capture may be nil.
func NewStatsHandler(t *tracker.Tracker, capture *logging.LogCaptureWriter) *StatsHandler {
	return &StatsHandler{tracker: t, capture: capture}
}

type providerStatsDTO struct {
	Attempts       int64 `json:"attempts"`
	Successes      int64 `json:"successes"`
	Failures       int64 `json:"failures"`
	RateLimited    int64 `json:"rate_limited"`
	Timeouts       int64 `json:"timeouts"`
	AuthErrors     int64 `json:"auth_errors"`
	QuotaErrors    int64 `json:"quota_errors"`
	QualityRejects int64 `json:"quality_rejects"`
	CacheHits      int64 `json:"cache_hits"`
	CacheMisses    int64 `json:"cache_misses"`
	CacheHitRate   int64 `json:"cache_hit_rate"` // percent
}

type statsResponseDTO struct {
	Providers  map[string]providerStatsDTO `json:"providers"`
	Fallbacks  map[gen.Capability]int64    `json:"fallbacks"`
	RecentLogs []string                    `json:"recent_logs"`
}

// ServeHTTP serves GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := statsResponseDTO{
		Providers: make(map[string]providerStatsDTO),
		Fallbacks: h.tracker.FallbackSnapshot(),
	}

	for provider, s := range h.tracker.Snapshot() {
		totalCache := s.CacheHits + s.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (s.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = providerStatsDTO{
			Attempts:       s.Attempts,
			Successes:      s.Successes,
			Failures:       s.Failures,
			RateLimited:    s.RateLimited,
			Timeouts:       s.Timeouts,
			AuthErrors:     s.AuthErrors,
			QuotaErrors:    s.QuotaErrors,
			QualityRejects: s.QualityRejects,
			CacheHits:      s.CacheHits,
			CacheMisses:    s.CacheMisses,
			CacheHitRate:   hitRate,
		}
	}

	if h.capture != nil {
		resp.RecentLogs = h.capture.Recent()
	}
	if resp.RecentLogs == nil {
		resp.RecentLogs = []string{}
	}

	writeJSON(w, http.StatusOK, resp)
}
