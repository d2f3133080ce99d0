package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	History   HistoryConfig   `yaml:"history"`
	DB        DBConfig        `yaml:"db"`
	Request   RequestConfig   `yaml:"request"`
	Router    RouterConfig    `yaml:"router"`
	Providers ProvidersConfig `yaml:"providers"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Cache     CacheConfig     `yaml:"cache"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Audio     AudioConfig     `yaml:"audio"`
	Inbox     InboxConfig     `yaml:"inbox"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// HistoryConfig controls the plain-text generation history log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// RequestConfig holds outbound HTTP settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Pace    Duration      `yaml:"pace"` // minimum gap between calls to one provider
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// RouterConfig holds failover routing settings.
type RouterConfig struct {
	TextTimeout     Duration      `yaml:"text_timeout"`
	AudioTimeout    Duration      `yaml:"audio_timeout"`
	ImageTimeout    Duration      `yaml:"image_timeout"` // clamped to [60s, 90s]
	MinTextChars    int           `yaml:"min_text_chars"`
	MinEnhanceChars int           `yaml:"min_enhance_chars"`
	MinAudioBytes   int           `yaml:"min_audio_bytes"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Threshold int      `yaml:"threshold"`
	Cooldown  Duration `yaml:"cooldown"`
}

// ProvidersConfig holds per-vendor settings. A vendor is used only when its
// credential validates; priority orders the failover chain (lower first).
type ProvidersConfig struct {
	OpenAI      OpenAIConfig      `yaml:"openai"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	GoogleAI    GoogleAIConfig    `yaml:"googleai"`
	Stability   StabilityConfig   `yaml:"stability"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
	EdgeSpeech  EdgeSpeechConfig  `yaml:"edgespeech"`
	Polly       PollyConfig       `yaml:"polly"`
}

// OpenAIConfig holds settings for OpenAI (or any compatible endpoint).
type OpenAIConfig struct {
	Key        string `yaml:"key"`
	BaseURL    string `yaml:"base_url"`
	Priority   int    `yaml:"priority"`
	Model      string `yaml:"model"`
	ImageModel string `yaml:"image_model"`
}

// HuggingFaceConfig holds settings for the HuggingFace Inference API.
type HuggingFaceConfig struct {
	Token      string `yaml:"token"`
	Priority   int    `yaml:"priority"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
}

// GoogleAIConfig holds settings for Google Gemini / Imagen.
type GoogleAIConfig struct {
	Key        string `yaml:"key"`
	Priority   int    `yaml:"priority"`
	Model      string `yaml:"model"`
	ImageModel string `yaml:"image_model"`
}

// StabilityConfig holds settings for Stability AI image generation.
type StabilityConfig struct {
	Key      string `yaml:"key"`
	Priority int    `yaml:"priority"`
	Engine   string `yaml:"engine"`
}

// ElevenLabsConfig holds settings for ElevenLabs TTS.
type ElevenLabsConfig struct {
	Key      string `yaml:"key"`
	Priority int    `yaml:"priority"`
	Voice    string `yaml:"voice"`
	Model    string `yaml:"model"`
}

// EdgeSpeechConfig holds settings for Edge neural TTS (keyless).
type EdgeSpeechConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
	Voice    string `yaml:"voice"`
}

// PollyConfig holds settings for Amazon Polly TTS.
type PollyConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Priority  int    `yaml:"priority"`
	Voice     string `yaml:"voice"`
	Engine    string `yaml:"engine"` // "standard" or "neural"
}

// DefaultsConfig holds the generation defaults used when a request leaves a
// field empty.
type DefaultsConfig struct {
	Genre      string `yaml:"genre"`
	Length     string `yaml:"length"`
	Style      string `yaml:"style"`
	Voice      string `yaml:"voice"`
	SceneCount int    `yaml:"scene_count"`
	ImageSize  string `yaml:"image_size"` // WxH, e.g. "1024x768"
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MemoryTTL  Duration `yaml:"memory_ttl"`
	Persistent bool     `yaml:"persistent"`
	Prune      Duration `yaml:"prune"` // persistent entries older than this are pruned at startup
}

// JobsConfig holds async storybook job settings.
type JobsConfig struct {
	TTL Duration `yaml:"ttl"`
}

// AudioConfig holds local narration preview settings.
type AudioConfig struct {
	PreviewEnabled bool    `yaml:"preview_enabled"`
	Volume         float64 `yaml:"volume"` // 0.0 - 1.0
}

// InboxConfig holds story inbox watcher settings.
type InboxConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Path     string   `yaml:"path"`
	Interval Duration `yaml:"interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1948",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "./logs/generation.log",
		},
		DB: DBConfig{
			Path: "./data/storymaker.db",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(120 * time.Second),
			Pace:    Duration(100 * time.Millisecond),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Router: RouterConfig{
			TextTimeout:     Duration(30 * time.Second),
			AudioTimeout:    Duration(30 * time.Second),
			ImageTimeout:    Duration(75 * time.Second),
			MinTextChars:    50,
			MinEnhanceChars: 1,
			MinAudioBytes:   1024,
			Breaker: BreakerConfig{
				Enabled:   true,
				Threshold: 5,
				Cooldown:  Duration(5 * time.Minute),
			},
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				BaseURL:    "https://api.openai.com/v1",
				Priority:   1,
				Model:      "gpt-4o-mini",
				ImageModel: "dall-e-3",
			},
			HuggingFace: HuggingFaceConfig{
				Priority:   2,
				TextModel:  "mistralai/Mistral-7B-Instruct-v0.3",
				ImageModel: "stabilityai/stable-diffusion-xl-base-1.0",
			},
			GoogleAI: GoogleAIConfig{
				Priority:   3,
				Model:      "gemini-2.5-flash",
				ImageModel: "imagen-3.0-generate-002",
			},
			Stability: StabilityConfig{
				Priority: 4,
				Engine:   "stable-diffusion-xl-1024-v1-0",
			},
			ElevenLabs: ElevenLabsConfig{
				Priority: 1,
				Voice:    "EXAVITQu4vr4xnSDxMaL",
				Model:    "eleven_multilingual_v2",
			},
			EdgeSpeech: EdgeSpeechConfig{
				Enabled:  true,
				Priority: 2,
				Voice:    "en-US-AvaMultilingualNeural",
			},
			Polly: PollyConfig{
				Region:   "us-east-1",
				Priority: 3,
				Voice:    "Joanna",
				Engine:   "neural",
			},
		},
		Defaults: DefaultsConfig{
			Genre:      "fantasy",
			Length:     "short",
			Style:      "watercolor",
			Voice:      "",
			SceneCount: 5,
			ImageSize:  "1024x768",
		},
		Cache: CacheConfig{
			MemoryTTL:  Duration(30 * time.Minute),
			Persistent: true,
			Prune:      Duration(2 * Week),
		},
		Jobs: JobsConfig{
			TTL: Duration(1 * time.Hour),
		},
		Audio: AudioConfig{
			PreviewEnabled: false,
			Volume:         0.8,
		},
		Inbox: InboxConfig{
			Enabled:  false,
			Path:     "./inbox",
			Interval: Duration(5 * time.Second),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		cfg.applyEnvFallbacks()
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	cfg.applyEnvFallbacks()
	return cfg, nil
}

// applyEnvFallbacks fills empty credentials from the conventional
// environment variables. File values win; env only backfills.
func (c *Config) applyEnvFallbacks() {
	fill := func(dst *string, envs ...string) {
		if *dst != "" {
			return
		}
		for _, e := range envs {
			if v := os.Getenv(e); v != "" {
				*dst = v
				return
			}
		}
	}

	fill(&c.Providers.OpenAI.Key, "OPENAI_API_KEY")
	fill(&c.Providers.HuggingFace.Token, "HF_API_TOKEN", "HUGGINGFACE_API_TOKEN")
	fill(&c.Providers.GoogleAI.Key, "GEMINI_API_KEY", "GOOGLE_AI_API_KEY")
	fill(&c.Providers.Stability.Key, "STABILITY_API_KEY")
	fill(&c.Providers.ElevenLabs.Key, "ELEVENLABS_API_KEY")
	fill(&c.Providers.Polly.AccessKey, "AWS_ACCESS_KEY_ID")
	fill(&c.Providers.Polly.SecretKey, "AWS_SECRET_ACCESS_KEY")
	fill(&c.Providers.Polly.Region, "AWS_REGION")
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Story Maker Configuration
# -------------------------
# Credentials left empty here are read from the environment:
#   OPENAI_API_KEY, HF_API_TOKEN, GEMINI_API_KEY, STABILITY_API_KEY,
#   ELEVENLABS_API_KEY, AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY
# Duration units: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for enum fields. Regex keeps the key's indentation so
	// the comment lands at the right nesting level.
	reGenre := regexp.MustCompile(`(?m)^(\s+)genre:`)
	data = reGenre.ReplaceAll(data, []byte("${1}# Options: fantasy, adventure, mystery, romance, scifi, horror, comedy, drama, fable\n${1}genre:"))

	reLength := regexp.MustCompile(`(?m)^(\s+)length:`)
	data = reLength.ReplaceAll(data, []byte("${1}# Options: short (~800 words), medium (~1800), long (~3500), very-long (~5500)\n${1}length:"))

	reStyle := regexp.MustCompile(`(?m)^(\s+)style:`)
	data = reStyle.ReplaceAll(data, []byte("${1}# Options: watercolor, digital-art, sketch, cartoon, oil-painting\n${1}style:"))

	rePollyEngine := regexp.MustCompile(`(?m)^(\s+)engine: neural`)
	data = rePollyEngine.ReplaceAll(data, []byte("${1}# Options: standard, neural\n${1}engine: neural"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
