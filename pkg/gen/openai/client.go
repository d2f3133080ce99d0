// Package openai adapts OpenAI (or any chat-completions compatible endpoint)
// to the generation interfaces: story text and prompt enhancement through
// /chat/completions, illustrations through /images/generations.
package openai

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
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

const providerName = "openai"

// Client implements text, enhance and image generation against an
// OpenAI-compatible API.
type Client struct {
	rc         *request.Client
	apiKey     string
	baseURL    string
	model      string
	imageModel string
}

// chatRequest follows the standard OpenAI Chat Completions format.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse follows the standard Chat Completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenAI client.
func NewClient(cfg config.OpenAIConfig, rc *request.Client) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		rc:         rc,
		apiKey:     credential.Clean(cfg.Key),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Configured() bool { return credential.IsConfigured(c.apiKey) }

func (c *Client) GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error) {
	temp := req.Temperature
	if temp == 0 {
		temp = 0.9
	}
	start := time.Now()
	text, err := c.chat(ctx, gen.StoryPrompt(req), temp)
	if err != nil {
		return nil, err
	}
	return &gen.TextResult{
		Text:     textproc.CleanFences(text),
		Provider: providerName,
		Model:    c.model,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) EnhancePrompt(ctx context.Context, req gen.EnhanceRequest) (*gen.TextResult, error) {
	start := time.Now()
	text, err := c.chat(ctx, gen.EnhanceInstruction(req), 0.7)
	if err != nil {
		return nil, err
	}
	return &gen.TextResult{
		Text:     textproc.NormalizeWhitespace(text),
		Provider: providerName,
		Model:    c.model,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error) {
	ireq := imageRequest{
		Model:          c.imageModel,
		Prompt:         gen.ImagePrompt(req),
		N:              1,
		Size:           imageSize(req.Width, req.Height),
		ResponseFormat: "b64_json",
	}

	body, err := json.Marshal(ireq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	start := time.Now()
	respBody, err := c.rc.PostWithHeaders(ctx, c.baseURL+"/images/generations", body, c.headers())
	if err != nil {
		return nil, err
	}

	var iresp imageResponse
	if err := json.Unmarshal(respBody, &iresp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image response: %w", err)
	}
	if iresp.Error != nil {
		return nil, &gen.APIError{Provider: providerName, Message: iresp.Error.Message}
	}
	if len(iresp.Data) == 0 {
		return nil, &gen.APIError{Provider: providerName, Message: "api returned no images"}
	}

	data, err := base64.StdEncoding.DecodeString(iresp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	return &gen.ImageResult{
		Data:     data,
		MIME:     "image/png",
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) chat(ctx context.Context, prompt string, temp float32) (string, error) {
	creq := chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: temp,
	}

	body, err := json.Marshal(creq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.rc.PostWithHeaders(ctx, c.baseURL+"/chat/completions", body, c.headers())
	if err != nil {
		return "", err
	}

	var cresp chatResponse
	if err := json.Unmarshal(respBody, &cresp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if cresp.Error != nil {
		return "", &gen.APIError{Provider: providerName, Message: fmt.Sprintf("%s (%s)", cresp.Error.Message, cresp.Error.Type)}
	}
	if len(cresp.Choices) == 0 {
		return "", &gen.APIError{Provider: providerName, Message: "api returned no choices"}
	}
	return cresp.Choices[0].Message.Content, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}
}

// imageSize maps requested dimensions onto the sizes DALL-E accepts.
func imageSize(width, height int) string {
	switch {
	case width > height:
		return "1792x1024"
	case height > width:
		return "1024x1792"
	default:
		return "1024x1024"
	}
}
