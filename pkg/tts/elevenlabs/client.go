// Package elevenlabs adapts the ElevenLabs text-to-speech REST API.
package elevenlabs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/credential"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tts"
)

const (
	providerName = "elevenlabs"
	apiBase      = "https://api.elevenlabs.io/v1/text-to-speech/"

	defaultVoice = "EXAVITQu4vr4xnSDxMaL"
	defaultModel = "eleven_multilingual_v2"
)

// Client implements audio synthesis against the text-to-speech endpoint.
type Client struct {
	rc      *request.Client
	apiKey  string
	baseURL string
	voice   string
	model   string
}

type synthesizeRequest struct {
	ModelID       string         `json:"model_id"`
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

// NewClient creates a new ElevenLabs client.
func NewClient(cfg config.ElevenLabsConfig, rc *request.Client) *Client {
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		rc:      rc,
		apiKey:  credential.Clean(cfg.Key),
		baseURL: apiBase,
		voice:   voice,
		model:   model,
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Configured() bool { return credential.IsConfigured(c.apiKey) }

func (c *Client) GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error) {
	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	text := tts.StripSpeakerLabels(req.Text)

	sreq := synthesizeRequest{
		ModelID: c.model,
		Text:    text,
		VoiceSettings: &voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Speed:           tts.ClampSpeed(req.Speed),
		},
	}
	body, err := json.Marshal(sreq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"xi-api-key":   c.apiKey,
		"Content-Type": "application/json",
		"Accept":       "audio/mpeg",
	}

	start := time.Now()
	respBody, err := c.rc.PostWithHeaders(ctx, c.baseURL+url.PathEscape(voice), body, headers)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		return nil, &gen.APIError{Provider: providerName, Message: "api returned no audio"}
	}

	return &gen.AudioResult{
		Data:     respBody,
		Format:   "mp3",
		Voice:    voice,
		Duration: tts.EstimateDuration(text, req.Speed),
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

// Voices returns a small set of well-known narration voices.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Language: "en", IsNeural: true},
		{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Language: "en", IsNeural: true},
		{ID: "XB0fDUnXU5powFXDhCwa", Name: "Charlotte", Language: "en", IsNeural: true},
	}, nil
}
