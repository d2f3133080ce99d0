// Package stability adapts the Stability AI text-to-image REST API.
package stability

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/credential"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
)

const (
	providerName = "stability"
	apiBase      = "https://api.stability.ai/v1/generation/"
)

// Client implements image generation against the engine-scoped
// text-to-image endpoint.
type Client struct {
	rc      *request.Client
	apiKey  string
	baseURL string
	engine  string
}

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight,omitempty"`
}

type generateRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    float64      `json:"cfg_scale"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Samples     int          `json:"samples"`
	Seed        int64        `json:"seed,omitempty"`
}

type generateResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// NewClient creates a new Stability client.
func NewClient(cfg config.StabilityConfig, rc *request.Client) *Client {
	engine := cfg.Engine
	if engine == "" {
		engine = "stable-diffusion-xl-1024-v1-0"
	}
	return &Client{
		rc:      rc,
		apiKey:  credential.Clean(cfg.Key),
		baseURL: apiBase,
		engine:  engine,
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Configured() bool { return credential.IsConfigured(c.apiKey) }

func (c *Client) GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error) {
	w, h := snapDimensions(req.Width, req.Height)
	greq := generateRequest{
		TextPrompts: []textPrompt{{Text: gen.ImagePrompt(req)}},
		CfgScale:    7,
		Width:       w,
		Height:      h,
		Samples:     1,
	}
	if req.Seed > 0 {
		greq.Seed = req.Seed
	}

	body, err := json.Marshal(greq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}

	start := time.Now()
	u := c.baseURL + c.engine + "/text-to-image"
	respBody, err := c.rc.PostWithHeaders(ctx, u, body, headers)
	if err != nil {
		return nil, err
	}

	var gresp generateResponse
	if err := json.Unmarshal(respBody, &gresp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(gresp.Artifacts) == 0 {
		return nil, &gen.APIError{Provider: providerName, Message: "api returned no artifacts"}
	}

	art := gresp.Artifacts[0]
	if strings.EqualFold(art.FinishReason, "CONTENT_FILTERED") {
		return nil, &gen.APIError{Provider: providerName, Message: "result blurred by content filter"}
	}

	data, err := base64.StdEncoding.DecodeString(art.Base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	return &gen.ImageResult{
		Data:     data,
		MIME:     "image/png",
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

// snapDimensions rounds the requested size to the 64-pixel grid SDXL
// engines require, defaulting to 1024 square.
func snapDimensions(w, h int) (int, int) {
	snap := func(v int) int {
		if v <= 0 {
			return 1024
		}
		v = (v / 64) * 64
		if v < 512 {
			v = 512
		}
		if v > 1536 {
			v = 1536
		}
		return v
	}
	return snap(w), snap(h)
}
