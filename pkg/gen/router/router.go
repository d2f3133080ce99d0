// Package router walks the ordered provider chain for each generation
// request, classifying failures and failing over until a provider delivers
// or the chain is exhausted. Exhaustion is not an error: the deterministic
// local generator synthesizes the result and tags it "fallback". The only
// errors callers ever see are their own context cancellations.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/fallback"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/registry"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultImageTimeout = 75 * time.Second
	minImageTimeout     = 60 * time.Second
	maxImageTimeout     = 90 * time.Second

	// MinAudioBytes mirrors the smallest plausible synthesized clip; vendor
	// responses under this are padding or error bodies.
	MinAudioBytes = 1024
)

// Config carries the router's knobs. Zero values mean defaults.
type Config struct {
	TextTimeout  time.Duration // text + enhance calls, default 30s
	AudioTimeout time.Duration // default 30s
	ImageTimeout time.Duration // default 75s, clamped to [60s, 90s]

	MinTextChars    int // quality gate for text, default 50
	MinEnhanceChars int // quality gate for enhance, default 1
	MinAudioBytes   int // quality gate for audio payloads, default 1024

	BreakerEnabled   bool
	BreakerThreshold int           // consecutive failures to open, default 5
	BreakerCooldown  time.Duration // default 5m

	HistoryPath    string
	HistoryEnabled bool
}

// DefaultConfig returns the production defaults (breaker on).
func DefaultConfig() Config {
	return Config{
		TextTimeout:      defaultTimeout,
		AudioTimeout:     defaultTimeout,
		ImageTimeout:     defaultImageTimeout,
		MinTextChars:     50,
		MinEnhanceChars:  1,
		MinAudioBytes:    MinAudioBytes,
		BreakerEnabled:   true,
		BreakerThreshold: 5,
		BreakerCooldown:  5 * time.Minute,
	}
}

// Router dispatches generation requests across the registered providers.
type Router struct {
	reg      *registry.Registry
	local    *fallback.Generator
	cfg      Config
	breakers *breakers
	tracker  *tracker.Tracker
}

// New creates a Router. The registry supplies the per-capability chains and
// the local generator is the terminal that makes every request succeed.
// The tracker may be nil.
func New(reg *registry.Registry, local *fallback.Generator, cfg Config, t *tracker.Tracker) (*Router, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry required")
	}
	if local == nil {
		return nil, fmt.Errorf("fallback generator required")
	}
	cfg = withDefaults(cfg)
	return &Router{
		reg:      reg,
		local:    local,
		cfg:      cfg,
		breakers: newBreakers(cfg.BreakerEnabled, cfg.BreakerThreshold, cfg.BreakerCooldown),
		tracker:  t,
	}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.TextTimeout <= 0 {
		cfg.TextTimeout = defaultTimeout
	}
	if cfg.AudioTimeout <= 0 {
		cfg.AudioTimeout = defaultTimeout
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = defaultImageTimeout
	}
	if cfg.ImageTimeout < minImageTimeout {
		cfg.ImageTimeout = minImageTimeout
	}
	if cfg.ImageTimeout > maxImageTimeout {
		cfg.ImageTimeout = maxImageTimeout
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 50
	}
	if cfg.MinEnhanceChars <= 0 {
		cfg.MinEnhanceChars = 1
	}
	if cfg.MinAudioBytes <= 0 {
		cfg.MinAudioBytes = MinAudioBytes
	}
	return cfg
}

// GenerateText runs the text chain and falls back to local synthesis.
func (r *Router) GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error) {
	out, err := r.execute(ctx, gen.CapText, req.Prompt,
		func(cctx context.Context, p gen.Provider) (any, string, error) {
			res, err := p.(gen.TextGenerator).GenerateText(cctx, req)
			if err != nil {
				return nil, "", err
			}
			if n := len(strings.TrimSpace(res.Text)); n < r.cfg.MinTextChars {
				return nil, "", fmt.Errorf("%w: %d chars from %s", gen.ErrQualityGate, n, p.Name())
			}
			return res, res.Text, nil
		},
		func() (any, string) {
			res, _ := r.local.GenerateText(ctx, req)
			return res, res.Text
		})
	if err != nil {
		return nil, err
	}
	return out.(*gen.TextResult), nil
}

// EnhancePrompt runs the enhance chain and falls back to local synthesis.
func (r *Router) EnhancePrompt(ctx context.Context, req gen.EnhanceRequest) (*gen.TextResult, error) {
	out, err := r.execute(ctx, gen.CapEnhance, req.Prompt,
		func(cctx context.Context, p gen.Provider) (any, string, error) {
			res, err := p.(gen.PromptEnhancer).EnhancePrompt(cctx, req)
			if err != nil {
				return nil, "", err
			}
			if n := len(strings.TrimSpace(res.Text)); n < r.cfg.MinEnhanceChars {
				return nil, "", fmt.Errorf("%w: empty enhancement from %s", gen.ErrQualityGate, p.Name())
			}
			return res, res.Text, nil
		},
		func() (any, string) {
			res, _ := r.local.EnhancePrompt(ctx, req)
			return res, res.Text
		})
	if err != nil {
		return nil, err
	}
	return out.(*gen.TextResult), nil
}

// GenerateImage runs the image chain and falls back to a placeholder
// descriptor.
func (r *Router) GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error) {
	out, err := r.execute(ctx, gen.CapImage, req.Prompt,
		func(cctx context.Context, p gen.Provider) (any, string, error) {
			res, err := p.(gen.ImageGenerator).GenerateImage(cctx, req)
			if err != nil {
				return nil, "", err
			}
			if len(res.Data) == 0 {
				return nil, "", fmt.Errorf("%w: empty image from %s", gen.ErrQualityGate, p.Name())
			}
			return res, fmt.Sprintf("image %s, %d bytes", res.MIME, len(res.Data)), nil
		},
		func() (any, string) {
			res, _ := r.local.GenerateImage(ctx, req)
			return res, "placeholder descriptor"
		})
	if err != nil {
		return nil, err
	}
	return out.(*gen.ImageResult), nil
}

// GenerateAudio runs the audio chain and falls back to a narration
// descriptor.
func (r *Router) GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error) {
	out, err := r.execute(ctx, gen.CapAudio, req.Text,
		func(cctx context.Context, p gen.Provider) (any, string, error) {
			res, err := p.(gen.AudioSynthesizer).GenerateAudio(cctx, req)
			if err != nil {
				return nil, "", err
			}
			if len(res.Data) < r.cfg.MinAudioBytes {
				return nil, "", fmt.Errorf("%w: %d audio bytes from %s", gen.ErrQualityGate, len(res.Data), p.Name())
			}
			return res, fmt.Sprintf("audio %s, %d bytes", res.Format, len(res.Data)), nil
		},
		func() (any, string) {
			res, _ := r.local.GenerateAudio(ctx, req)
			return res, "narration descriptor"
		})
	if err != nil {
		return nil, err
	}
	return out.(*gen.AudioResult), nil
}

// OpenCircuits reports providers currently skipped by the breaker and when
// each becomes eligible again.
func (r *Router) OpenCircuits() map[string]time.Time {
	return r.breakers.snapshot()
}

// execute walks the capability's chain. attempt runs one provider under the
// per-provider timeout and applies the quality gate; synth produces the
// terminal local result. Only context cancellation propagates as an error.
func (r *Router) execute(
	ctx context.Context,
	cap gen.Capability,
	prompt string,
	attempt func(context.Context, gen.Provider) (any, string, error),
	synth func() (any, string),
) (any, error) {
	candidates := r.reg.Ordered(cap)

	for i, p := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := p.Name()
		if r.breakers.open(name) {
			slog.Debug("Provider circuit open, skipping", "provider", name, "capability", cap)
			continue
		}

		r.trackAttempt(name)
		cctx, cancel := context.WithTimeout(ctx, r.timeoutFor(cap))
		res, summary, err := attempt(cctx, p)
		cancel()

		if err == nil {
			r.breakers.success(name)
			r.trackSuccess(name)
			r.logRequest(name, string(cap), prompt, summary, nil)
			return res, nil
		}

		// The caller bailing out is not a provider failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		class := gen.Classify(err)
		r.trackFailure(name, class)
		r.breakers.failure(name, class.Unrecoverable())
		r.logRequest(name, string(cap), prompt, "", err)

		if i < len(candidates)-1 {
			slog.Warn("Provider failed, falling over",
				"provider", name, "capability", cap, "class", class, "next", candidates[i+1].Name(), "error", err)
		} else {
			slog.Warn("Last provider failed",
				"provider", name, "capability", cap, "class", class, "error", err)
		}
	}

	// Chain empty or exhausted: synthesize locally. Never an error.
	if len(candidates) == 0 {
		slog.Info("No configured providers, synthesizing locally", "capability", cap)
	} else {
		slog.Info("All providers exhausted, synthesizing locally", "capability", cap, "tried", len(candidates))
	}
	r.trackFallback(cap)
	res, summary := synth()
	r.logRequest(gen.FallbackProvider, string(cap), prompt, summary, nil)
	return res, nil
}

func (r *Router) timeoutFor(cap gen.Capability) time.Duration {
	switch cap {
	case gen.CapImage:
		return r.cfg.ImageTimeout
	case gen.CapAudio:
		return r.cfg.AudioTimeout
	default:
		return r.cfg.TextTimeout
	}
}

func (r *Router) trackAttempt(name string) {
	if r.tracker != nil {
		r.tracker.TrackAttempt(name)
	}
}

func (r *Router) trackSuccess(name string) {
	if r.tracker != nil {
		r.tracker.TrackSuccess(name)
	}
}

func (r *Router) trackFailure(name string, class gen.FailureClass) {
	if r.tracker != nil {
		r.tracker.TrackFailure(name, class)
	}
}

func (r *Router) trackFallback(cap gen.Capability) {
	if r.tracker != nil {
		r.tracker.TrackFallback(cap)
	}
}
