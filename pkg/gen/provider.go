// Package gen defines the provider-facing contracts for content generation:
// capabilities, request/result shapes, the error taxonomy, and the narrow
// interfaces vendor adapters implement. Routing, registration, credential
// checks and the deterministic fallback live in subpackages.
package gen

import (
	"context"
)

// Capability names one kind of generation a provider can serve.
type Capability string

const (
	CapText    Capability = "text"
	CapEnhance Capability = "enhance"
	CapImage   Capability = "image"
	CapAudio   Capability = "audio"
)

// Capabilities lists every capability in a stable order.
func Capabilities() []Capability {
	return []Capability{CapText, CapEnhance, CapImage, CapAudio}
}

// Provider is the minimal contract every vendor adapter satisfies.
// Configured reports whether the adapter holds a usable credential; keyless
// vendors return true unconditionally.
type Provider interface {
	Name() string
	Configured() bool
}

// TextGenerator produces narrative text from a prompt.
type TextGenerator interface {
	Provider
	GenerateText(ctx context.Context, req TextRequest) (*TextResult, error)
}

// PromptEnhancer rewrites a prompt for richer downstream generation.
type PromptEnhancer interface {
	Provider
	EnhancePrompt(ctx context.Context, req EnhanceRequest) (*TextResult, error)
}

// ImageGenerator produces an illustration from a prompt.
type ImageGenerator interface {
	Provider
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// AudioSynthesizer produces narration audio from text.
type AudioSynthesizer interface {
	Provider
	GenerateAudio(ctx context.Context, req AudioRequest) (*AudioResult, error)
}

// Supports reports whether p implements the interface backing cap.
func Supports(p Provider, cap Capability) bool {
	switch cap {
	case CapText:
		_, ok := p.(TextGenerator)
		return ok
	case CapEnhance:
		_, ok := p.(PromptEnhancer)
		return ok
	case CapImage:
		_, ok := p.(ImageGenerator)
		return ok
	case CapAudio:
		_, ok := p.(AudioSynthesizer)
		return ok
	}
	return false
}
