package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/version"
)

// Handlers bundles the endpoint handlers the server mounts. Preview may be
// nil when local playback is disabled.
type Handlers struct {
	Generate   *GenerateHandler
	Storybooks *StorybookHandler
	Providers  *ProvidersHandler
	Stats      *StatsHandler
	Preview    *PreviewHandler
}

// NewServer creates and configures the HTTP server.
func NewServer(addr string, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	mux.HandleFunc("POST /api/generate/text", h.Generate.HandleText)
	mux.HandleFunc("POST /api/generate/enhance", h.Generate.HandleEnhance)
	mux.HandleFunc("POST /api/generate/image", h.Generate.HandleImage)
	mux.HandleFunc("POST /api/generate/audio", h.Generate.HandleAudio)

	mux.HandleFunc("POST /api/storybooks", h.Storybooks.HandleCreate)
	mux.HandleFunc("GET /api/storybooks", h.Storybooks.HandleList)
	mux.HandleFunc("GET /api/storybooks/jobs/{id}", h.Storybooks.HandleJob)
	mux.HandleFunc("GET /api/storybooks/{id}", h.Storybooks.HandleGet)
	mux.HandleFunc("DELETE /api/storybooks/{id}", h.Storybooks.HandleDelete)

	mux.Handle("GET /api/providers", h.Providers)
	mux.Handle("GET /api/stats", h.Stats)

	if h.Preview != nil {
		mux.HandleFunc("POST /api/preview", h.Preview.HandlePlay)
		mux.HandleFunc("POST /api/preview/stop", h.Preview.HandleStop)
	}

	return &http.Server{
		Addr:    addr,
		Handler: accessLog(mux),
		// Generation calls ride the failover chain; the write timeout has to
		// cover the longest image window plus retries.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`+"\n", version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
