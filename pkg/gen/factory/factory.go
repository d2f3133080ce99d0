// Package factory builds provider adapters from configuration and registers
// them with a registry. It is the one place that knows every vendor.
package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/googleai"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/huggingface"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/openai"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/registry"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/stability"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tts/edgespeech"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tts/elevenlabs"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tts/polly"
)

// BuildRegistry constructs every adapter named in cfg and registers it with
// its configured priority. Unconfigured adapters are registered too; the
// registry hides them from the failover chain until their credential
// appears.
func BuildRegistry(ctx context.Context, cfg *config.Config, rc *request.Client) (*registry.Registry, error) {
	reg := registry.New()
	p := cfg.Providers

	ga, err := googleai.NewClient(ctx, p.GoogleAI)
	if err != nil {
		return nil, fmt.Errorf("googleai: %w", err)
	}

	registrations := []struct {
		provider gen.Provider
		priority int
		caps     []gen.Capability
	}{
		{openai.NewClient(p.OpenAI, rc), p.OpenAI.Priority, []gen.Capability{gen.CapText, gen.CapEnhance, gen.CapImage}},
		{huggingface.NewClient(p.HuggingFace, rc), p.HuggingFace.Priority, []gen.Capability{gen.CapText, gen.CapImage}},
		{ga, p.GoogleAI.Priority, []gen.Capability{gen.CapText, gen.CapEnhance, gen.CapImage}},
		{stability.NewClient(p.Stability, rc), p.Stability.Priority, []gen.Capability{gen.CapImage}},
		{elevenlabs.NewClient(p.ElevenLabs, rc), p.ElevenLabs.Priority, []gen.Capability{gen.CapAudio}},
		{edgespeech.NewClient(p.EdgeSpeech), p.EdgeSpeech.Priority, []gen.Capability{gen.CapAudio}},
		{polly.NewClient(p.Polly), p.Polly.Priority, []gen.Capability{gen.CapAudio}},
	}
	for _, r := range registrations {
		if err := reg.Register(r.provider, r.priority, r.caps...); err != nil {
			return nil, fmt.Errorf("register %s: %w", r.provider.Name(), err)
		}
	}

	for _, info := range reg.Snapshot() {
		slog.Info("Provider registered",
			"provider", info.Name,
			"priority", info.Priority,
			"configured", info.Configured,
			"capabilities", info.Capabilities)
	}
	return reg, nil
}
