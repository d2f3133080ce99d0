// Package googleai adapts Google Gemini (text, enhancement) and Imagen
// (illustrations) through the official genai SDK.
package googleai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/credential"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

const providerName = "googleai"

// Client implements text, enhance and image generation against the Gemini
// API family.
type Client struct {
	genaiClient *genai.Client
	apiKey      string
	model       string
	imageModel  string
}

// NewClient creates a new Google AI client. Without a usable key the client
// is created unconfigured and every generation call fails fast.
func NewClient(ctx context.Context, cfg config.GoogleAIConfig) (*Client, error) {
	c := &Client{
		apiKey:     credential.Clean(cfg.Key),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
	if c.model == "" {
		c.model = "gemini-2.5-flash"
	}
	if c.imageModel == "" {
		c.imageModel = "imagen-3.0-generate-002"
	}

	if !credential.IsConfigured(c.apiKey) {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: c.apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client
	return c, nil
}

func (c *Client) Name() string { return providerName }

func (c *Client) Configured() bool {
	return c.genaiClient != nil && credential.IsConfigured(c.apiKey)
}

// ValidateModel checks whether the configured text model exists for this
// key. Failures only log; actual generation calls decide.
func (c *Client) ValidateModel(ctx context.Context) {
	if c.genaiClient == nil {
		return
	}

	name := c.model
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	if _, err := c.genaiClient.Models.Get(ctx, name, nil); err == nil {
		slog.Debug("Gemini model validation success", "model", c.model)
		return
	}

	iter, err := c.genaiClient.Models.List(ctx, nil)
	if err != nil {
		slog.Warn("Failed to list models", "error", err)
		return
	}

	var available []string
	for {
		m, nextErr := iter.Next(ctx)
		if nextErr == iterator.Done {
			break
		}
		if nextErr != nil {
			break
		}
		if strings.Contains(strings.ToLower(m.Name), "gemini") {
			available = append(available, m.Name)
		}
	}
	slog.Warn("Configured Gemini model not found", "configured", c.model, "available", available)
}

func (c *Client) GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error) {
	temp := req.Temperature
	if temp == 0 {
		temp = 0.9
	}
	start := time.Now()
	text, err := c.generate(ctx, gen.StoryPrompt(req), temp)
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
	text, err := c.generate(ctx, gen.EnhanceInstruction(req), 0.7)
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
	if c.genaiClient == nil {
		return nil, &gen.APIError{Provider: providerName, Message: "client not configured"}
	}

	start := time.Now()
	resp, err := c.genaiClient.Models.GenerateImages(ctx, c.imageModel, gen.ImagePrompt(req), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, &gen.APIError{Provider: providerName, Message: "api returned no images"}
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &gen.ImageResult{
		Data:     img.ImageBytes,
		MIME:     mime,
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

func (c *Client) generate(ctx context.Context, prompt string, temp float32) (string, error) {
	if c.genaiClient == nil {
		return "", &gen.APIError{Provider: providerName, Message: "client not configured"}
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(temp)}
	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", wrapError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &gen.APIError{Provider: providerName, Message: "no candidates returned"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &gen.APIError{Provider: providerName, Message: "candidate contained no text"}
	}
	return sb.String(), nil
}

// wrapError normalizes SDK errors so the router can classify them by status
// code.
func wrapError(err error) error {
	var aerr genai.APIError
	if errors.As(err, &aerr) {
		return &gen.APIError{Provider: providerName, StatusCode: aerr.Code, Message: aerr.Message}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &gen.APIError{Provider: providerName, StatusCode: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("%s: %w", providerName, err)
}
