package gen

import (
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

// TextRequest asks for narrative text.
type TextRequest struct {
	Prompt string
	Genre  model.Genre
	Length model.LengthTier

	// Seed drives the deterministic fallback (and any vendor that accepts
	// one). Zero means "derive from the prompt".
	Seed int64

	Temperature float32
}

// EnhanceRequest asks for a richer version of a prompt.
type EnhanceRequest struct {
	Prompt string
	Genre  model.Genre
	Style  model.VisualStyle
	Seed   int64
}

// ImageRequest asks for one illustration.
type ImageRequest struct {
	Prompt     string
	Style      model.VisualStyle
	SceneIndex int
	Width      int
	Height     int
	Seed       int64
}

// AudioRequest asks for a narration track.
type AudioRequest struct {
	Text  string
	Voice string
	Speed float64 // 1.0 = normal; adapters clamp to their supported range
	Seed  int64
}

// TextResult is the outcome of text generation or prompt enhancement.
type TextResult struct {
	Text     string
	Provider string
	Model    string
	Elapsed  time.Duration
}

// ImageResult is the outcome of image generation. Exactly one of Data or
// Placeholder is populated.
type ImageResult struct {
	Data        []byte
	MIME        string
	Placeholder *model.ImagePlaceholder
	Provider    string
	Elapsed     time.Duration
}

// Asset converts the result into its storable form.
func (r *ImageResult) Asset() *model.ImageAsset {
	return &model.ImageAsset{
		Provider:    r.Provider,
		MIME:        r.MIME,
		Data:        r.Data,
		Placeholder: r.Placeholder,
	}
}

// AudioResult is the outcome of audio synthesis. Data is empty for the
// local descriptor produced by the fallback.
type AudioResult struct {
	Data     []byte
	Format   string
	Voice    string
	Duration time.Duration
	Provider string
	Elapsed  time.Duration
}

// Asset converts the result into its storable form.
func (r *AudioResult) Asset() *model.AudioAsset {
	return &model.AudioAsset{
		Provider: r.Provider,
		Format:   r.Format,
		Data:     r.Data,
		Voice:    r.Voice,
		Duration: r.Duration,
	}
}

// FallbackProvider is the reserved provider name for locally synthesized
// results.
const FallbackProvider = "fallback"
