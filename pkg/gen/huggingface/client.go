// Package huggingface adapts the HuggingFace Inference API: hosted
// text-generation models for story text and diffusion models for
// illustrations. Diffusion endpoints return raw image bytes rather than
// JSON.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/credential"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

const (
	providerName = "huggingface"
	inferenceURL = "https://api-inference.huggingface.co/models/"
)

// Client implements text and image generation against hosted inference
// endpoints.
type Client struct {
	rc         *request.Client
	token      string
	baseURL    string
	textModel  string
	imageModel string
}

type textParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float32 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type textPayload struct {
	Inputs     string         `json:"inputs"`
	Parameters textParameters `json:"parameters"`
}

type textOutput []struct {
	GeneratedText string `json:"generated_text"`
}

type imagePayload struct {
	Inputs string `json:"inputs"`
}

// NewClient creates a new HuggingFace client.
func NewClient(cfg config.HuggingFaceConfig, rc *request.Client) *Client {
	textModel := cfg.TextModel
	if textModel == "" {
		textModel = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "stabilityai/stable-diffusion-xl-base-1.0"
	}
	return &Client{
		rc:         rc,
		token:      credential.Clean(cfg.Token),
		baseURL:    inferenceURL,
		textModel:  textModel,
		imageModel: imageModel,
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Configured() bool { return credential.IsConfigured(c.token) }

func (c *Client) GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error) {
	temp := req.Temperature
	if temp == 0 {
		temp = 0.9
	}

	payload := textPayload{
		Inputs: gen.StoryPrompt(req),
		Parameters: textParameters{
			// Roughly 1.4 tokens per word, plus headroom
			MaxNewTokens: maxTokensFor(req.Length),
			Temperature:  temp,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	respBody, err := c.rc.PostWithHeaders(ctx, c.modelURL(c.textModel), body, c.headers())
	if err != nil {
		return nil, err
	}

	var out textOutput
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(out) == 0 || out[0].GeneratedText == "" {
		return nil, &gen.APIError{Provider: providerName, Message: "model returned no text"}
	}

	return &gen.TextResult{
		Text:     textproc.CleanFences(out[0].GeneratedText),
		Provider: providerName,
		Model:    c.textModel,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error) {
	body, err := json.Marshal(imagePayload{Inputs: gen.ImagePrompt(req)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := c.headers()
	headers["Accept"] = "image/png"

	start := time.Now()
	respBody, err := c.rc.PostWithHeaders(ctx, c.modelURL(c.imageModel), body, headers)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		return nil, &gen.APIError{Provider: providerName, Message: "model returned no image"}
	}
	// A JSON body here means the endpoint answered with an error or a
	// model-loading notice instead of pixels.
	if respBody[0] == '{' {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &e)
		if e.Error == "" {
			e.Error = "unexpected json response from diffusion endpoint"
		}
		return nil, &gen.APIError{Provider: providerName, Message: e.Error}
	}

	return &gen.ImageResult{
		Data:     respBody,
		MIME:     "image/png",
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) modelURL(model string) string {
	return c.baseURL + url.PathEscape(model)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.token,
		"Content-Type":  "application/json",
	}
}

// maxTokensFor leaves generous headroom above the tier's word target.
func maxTokensFor(tier model.LengthTier) int {
	switch tier {
	case model.LengthVeryLong:
		return 8192
	case model.LengthLong:
		return 6144
	case model.LengthMedium:
		return 3072
	default:
		return 1536
	}
}
