package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

// Generator is the slice of the router the generation endpoints use.
type Generator interface {
	GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error)
	EnhancePrompt(ctx context.Context, req gen.EnhanceRequest) (*gen.TextResult, error)
	GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error)
	GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error)
}

// GenerateHandler serves the four direct generation endpoints.
type GenerateHandler struct {
	gen      Generator
	defaults config.DefaultsConfig
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(g Generator, defaults config.DefaultsConfig) *GenerateHandler {
	return &GenerateHandler{gen: g, defaults: defaults}
}

type textRequestDTO struct {
	Prompt      string  `json:"prompt"`
	Genre       string  `json:"genre"`
	Length      string  `json:"length"`
	Seed        int64   `json:"seed"`
	Temperature float32 `json:"temperature"`
}

type textResponseDTO struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	Model     string `json:"model,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// HandleText serves POST /api/generate/text.
func (h *GenerateHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	var req textRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	res, err := h.gen.GenerateText(r.Context(), gen.TextRequest{
		Prompt:      req.Prompt,
		Genre:       h.genre(req.Genre),
		Length:      h.length(req.Length),
		Seed:        req.Seed,
		Temperature: req.Temperature,
	})
	if err != nil {
		http.Error(w, err.Error(), statusFor(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, textResponseDTO{
		Text:      res.Text,
		Provider:  res.Provider,
		Model:     res.Model,
		ElapsedMS: res.Elapsed.Milliseconds(),
	})
}

type enhanceRequestDTO struct {
	Prompt string `json:"prompt"`
	Genre  string `json:"genre"`
	Style  string `json:"style"`
	Seed   int64  `json:"seed"`
}

// HandleEnhance serves POST /api/generate/enhance.
func (h *GenerateHandler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	res, err := h.gen.EnhancePrompt(r.Context(), gen.EnhanceRequest{
		Prompt: req.Prompt,
		Genre:  h.genre(req.Genre),
		Style:  h.style(req.Style),
		Seed:   req.Seed,
	})
	if err != nil {
		http.Error(w, err.Error(), statusFor(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, textResponseDTO{
		Text:      res.Text,
		Provider:  res.Provider,
		Model:     res.Model,
		ElapsedMS: res.Elapsed.Milliseconds(),
	})
}

type imageRequestDTO struct {
	Prompt     string `json:"prompt"`
	Style      string `json:"style"`
	SceneIndex int    `json:"scene_index"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Seed       int64  `json:"seed"`
}

type imageResponseDTO struct {
	Data        []byte                  `json:"data,omitempty"` // base64 in JSON
	MIME        string                  `json:"mime,omitempty"`
	Placeholder *model.ImagePlaceholder `json:"placeholder,omitempty"`
	Provider    string                  `json:"provider"`
	ElapsedMS   int64                   `json:"elapsed_ms"`
}

// HandleImage serves POST /api/generate/image.
func (h *GenerateHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	width, height := req.Width, req.Height
	if width <= 0 || height <= 0 {
		width, height = h.imageSize()
	}

	res, err := h.gen.GenerateImage(r.Context(), gen.ImageRequest{
		Prompt:     req.Prompt,
		Style:      h.style(req.Style),
		SceneIndex: req.SceneIndex,
		Width:      width,
		Height:     height,
		Seed:       req.Seed,
	})
	if err != nil {
		http.Error(w, err.Error(), statusFor(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, imageResponseDTO{
		Data:        res.Data,
		MIME:        res.MIME,
		Placeholder: res.Placeholder,
		Provider:    res.Provider,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	})
}

type audioRequestDTO struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
	Seed  int64   `json:"seed"`
}

type audioResponseDTO struct {
	Data       []byte `json:"data,omitempty"`
	Format     string `json:"format,omitempty"`
	Voice      string `json:"voice"`
	DurationMS int64  `json:"duration_ms"`
	Provider   string `json:"provider"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// HandleAudio serves POST /api/generate/audio.
func (h *GenerateHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = h.defaults.Voice
	}

	res, err := h.gen.GenerateAudio(r.Context(), gen.AudioRequest{
		Text:  req.Text,
		Voice: voice,
		Speed: req.Speed,
		Seed:  req.Seed,
	})
	if err != nil {
		http.Error(w, err.Error(), statusFor(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, audioResponseDTO{
		Data:       res.Data,
		Format:     res.Format,
		Voice:      res.Voice,
		DurationMS: res.Duration.Milliseconds(),
		Provider:   res.Provider,
		ElapsedMS:  res.Elapsed.Milliseconds(),
	})
}

func (h *GenerateHandler) genre(s string) model.Genre {
	if s == "" {
		s = h.defaults.Genre
	}
	return model.Genre(s)
}

func (h *GenerateHandler) length(s string) model.LengthTier {
	if s == "" {
		s = h.defaults.Length
	}
	return model.LengthTier(s)
}

func (h *GenerateHandler) style(s string) model.VisualStyle {
	if s == "" {
		s = h.defaults.Style
	}
	return model.VisualStyle(s)
}

// imageSize parses the configured "WxH" default, falling back to 1024x768.
func (h *GenerateHandler) imageSize() (int, int) {
	parts := strings.SplitN(strings.ToLower(h.defaults.ImageSize), "x", 2)
	if len(parts) == 2 {
		w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
		ht, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errW == nil && errH == nil && w > 0 && ht > 0 {
			return w, ht
		}
	}
	return 1024, 768
}

// statusFor maps facade errors onto HTTP codes. The router only surfaces
// context cancellation, so everything else is a server fault.
func statusFor(ctx context.Context, _ error) int {
	if ctx.Err() != nil {
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
