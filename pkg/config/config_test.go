package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "storymaker.yaml")

	tests := []struct {
		name      string
		setup     func()
		validate  func(*testing.T, *Config)
		checkFile func(*testing.T)
	}{
		{
			name:  "NewFile_Defaults",
			setup: func() {}, // No file
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Defaults.Genre != "fantasy" {
					t.Errorf("expected default genre 'fantasy', got '%s'", cfg.Defaults.Genre)
				}
				if cfg.Router.MinTextChars != 50 {
					t.Errorf("expected min_text_chars default 50, got %d", cfg.Router.MinTextChars)
				}
				if !cfg.Router.Breaker.Enabled {
					t.Error("expected breaker enabled by default")
				}
				if got := time.Duration(cfg.Router.ImageTimeout); got != 75*time.Second {
					t.Errorf("expected image timeout 75s, got %v", got)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "genre: fantasy") {
					t.Error("config file missing default genre")
				}
				if !strings.Contains(string(content), "# Options: watercolor, digital-art") {
					t.Error("config file missing style options comment")
				}
			},
		},
		{
			name: "ExistingFile_Override",
			setup: func() {
				err := os.WriteFile(configPath, []byte("defaults:\n  genre: horror\n  scene_count: 9\nrouter:\n  min_text_chars: 120\n"), 0o644)
				if err != nil {
					t.Fatalf("failed to setup test file: %v", err)
				}
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Defaults.Genre != "horror" {
					t.Errorf("expected genre 'horror', got '%s'", cfg.Defaults.Genre)
				}
				if cfg.Defaults.SceneCount != 9 {
					t.Errorf("expected scene_count 9, got %d", cfg.Defaults.SceneCount)
				}
				if cfg.Router.MinTextChars != 120 {
					t.Errorf("expected min_text_chars 120, got %d", cfg.Router.MinTextChars)
				}
				// Unset fields keep their defaults
				if cfg.Providers.ElevenLabs.Voice != "EXAVITQu4vr4xnSDxMaL" {
					t.Errorf("expected default ElevenLabs voice, got '%s'", cfg.Providers.ElevenLabs.Voice)
				}
			},
			checkFile: func(t *testing.T) {
				content, err := os.ReadFile(configPath)
				if err != nil {
					t.Fatalf("failed to read config file: %v", err)
				}
				if !strings.Contains(string(content), "genre: horror") {
					t.Error("config file should keep custom value")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(configPath)
			tt.setup()

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.validate(t, cfg)
			tt.checkFile(t)
		})
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-test-key-12345")
	t.Setenv("ELEVENLABS_API_KEY", "el-env-test-key-12345")

	cfg := DefaultConfig()
	cfg.Providers.ElevenLabs.Key = "file-wins-over-env"
	cfg.applyEnvFallbacks()

	if cfg.Providers.OpenAI.Key != "sk-env-test-key-12345" {
		t.Errorf("expected OpenAI key from env, got '%s'", cfg.Providers.OpenAI.Key)
	}
	if cfg.Providers.ElevenLabs.Key != "file-wins-over-env" {
		t.Errorf("file value should win over env, got '%s'", cfg.Providers.ElevenLabs.Key)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"1d", Day, false},
		{"2w", 2 * Week, false},
		{"1d12h", Day + 12*time.Hour, false},
		{"", 0, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
