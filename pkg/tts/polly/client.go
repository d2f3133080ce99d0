// Package polly adapts Amazon Polly speech synthesis through aws-sdk-go-v2.
package polly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awspolly "github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	gencred "github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/credential"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tts"
)

const providerName = "polly"

// synthClient is the slice of the Polly API the adapter uses; tests swap in
// a fake.
type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *awspolly.SynthesizeSpeechInput, optFns ...func(*awspolly.Options)) (*awspolly.SynthesizeSpeechOutput, error)
}

// Client implements audio synthesis against Amazon Polly.
type Client struct {
	mu        sync.Mutex
	client    synthClient
	accessKey string
	secretKey string
	region    string
	voice     string
	engine    string
}

// NewClient creates a new Polly client. The AWS client itself is built
// lazily on first use.
func NewClient(cfg config.PollyConfig) *Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "Joanna"
	}
	engine := cfg.Engine
	if engine == "" {
		engine = "neural"
	}
	return &Client{
		accessKey: gencred.Clean(cfg.AccessKey),
		secretKey: gencred.Clean(cfg.SecretKey),
		region:    region,
		voice:     voice,
		engine:    engine,
	}
}

func (c *Client) Name() string { return providerName }

// Configured requires the full key pair.
func (c *Client) Configured() bool {
	return gencred.PairConfigured(c.accessKey, c.secretKey)
}

func (c *Client) GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error) {
	client, err := c.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	engine := pollytypes.EngineStandard
	if strings.EqualFold(c.engine, "neural") {
		engine = pollytypes.EngineNeural
	}
	text := tts.StripSpeakerLabels(req.Text)

	start := time.Now()
	output, err := client.SynthesizeSpeech(ctx, &awspolly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(voice),
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if output == nil || output.AudioStream == nil {
		return nil, &gen.APIError{Provider: providerName, Message: "empty audio stream"}
	}
	defer output.AudioStream.Close()

	data, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}
	if len(data) == 0 {
		return nil, &gen.APIError{Provider: providerName, Message: "empty audio stream"}
	}

	return &gen.AudioResult{
		Data:     data,
		Format:   "mp3",
		Voice:    voice,
		Duration: tts.EstimateDuration(text, req.Speed),
		Provider: providerName,
		Elapsed:  time.Since(start),
	}, nil
}

// Voices returns a subset of narration-suited voices.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "Joanna", Name: "Joanna", Language: "en-US", IsNeural: true},
		{ID: "Matthew", Name: "Matthew", Language: "en-US", IsNeural: true},
		{ID: "Amy", Name: "Amy", Language: "en-GB", IsNeural: true},
	}, nil
}

func (c *Client) resolveClient(ctx context.Context) (synthClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.region)}
	if c.accessKey != "" && c.secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.accessKey, c.secretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	c.client = awspolly.NewFromConfig(awsCfg)
	return c.client, nil
}

// wrapError maps smithy error codes onto status codes the router's
// classifier understands.
func wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		status := 0
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException", "ThrottlingException":
			status = 429
		case "UnrecognizedClientException", "InvalidSignatureException":
			status = 401
		case "AccessDeniedException", "ExpiredTokenException":
			status = 403
		case "ServiceFailureException":
			status = 500
		}
		return &gen.APIError{Provider: providerName, StatusCode: status, Message: apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()}
	}
	return fmt.Errorf("%s: %w", providerName, err)
}
