package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/audio"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/store"
)

// PreviewHandler plays generated narration through the local speaker.
type PreviewHandler struct {
	player audio.Player
	store  store.StorybookStore
}

// NewPreviewHandler creates a PreviewHandler.
func NewPreviewHandler(p audio.Player, st store.StorybookStore) *PreviewHandler {
	return &PreviewHandler{player: p, store: st}
}

type previewRequestDTO struct {
	StorybookID string  `json:"storybook_id"`
	Data        []byte  `json:"data"` // base64 clip, alternative to an ID
	Volume      float64 `json:"volume"`
}

// HandlePlay serves POST /api/preview.
func (h *PreviewHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	var req previewRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Volume > 0 {
		h.player.SetVolume(req.Volume)
	}

	name := "clip"
	data := req.Data
	if id := strings.TrimSpace(req.StorybookID); id != "" {
		sb, err := h.store.GetStorybook(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sb == nil {
			http.Error(w, "storybook not found", http.StatusNotFound)
			return
		}
		if sb.Audio == nil || len(sb.Audio.Data) == 0 {
			http.Error(w, "storybook has no narration audio", http.StatusConflict)
			return
		}
		name = sb.Title
		data = sb.Audio.Data
	}

	if len(data) == 0 {
		http.Error(w, "storybook_id or data is required", http.StatusBadRequest)
		return
	}

	if err := h.player.Enqueue(name, data); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, audio.ErrQueueFull) {
			status = http.StatusTooManyRequests
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "clip": name})
}

// HandleStop serves POST /api/preview/stop.
func (h *PreviewHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.player.Stop()
	w.WriteHeader(http.StatusNoContent)
}
