// storyctl is the one-shot command line companion to the storymaker daemon:
// it runs a single generation (text, enhanced prompt, or a full storybook)
// and writes the result to files. With --offline the deterministic local
// generator is used and no network call is made.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/audio"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/cache"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/factory"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/fallback"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/router"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/story"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/version"
)

// generator is the facade slice every subcommand works against; both the
// router and the offline fallback satisfy it.
type generator interface {
	GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error)
	EnhancePrompt(ctx context.Context, req gen.EnhanceRequest) (*gen.TextResult, error)
	GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error)
	GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error)
}

type options struct {
	configPath string
	offline    bool
	verbose    bool

	prompt string
	file   string
	title  string
	genre  string
	length string
	style  string
	voice  string
	speed  float64
	scenes int
	seed   int64
	out    string
	play   bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `storyctl %s - one-shot story generation

Usage:
  storyctl generate  --prompt "..." [--genre g] [--length l] [--out story.txt]
  storyctl enhance   --prompt "..." [--genre g] [--style s]
  storyctl storybook [--prompt "..." | --file story.txt] [--scenes n] [--out book.json] [--play]

Common flags: --config path, --offline, --seed n, --verbose
`, version.Version)
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing subcommand")
	}
	cmd, rest := args[0], args[1:]

	var opt options
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.StringVar(&opt.configPath, "config", "configs/storymaker.yaml", "Path to the config file")
	fs.BoolVar(&opt.offline, "offline", false, "Use the deterministic local generator, no network")
	fs.BoolVar(&opt.verbose, "verbose", false, "Debug logging")
	fs.StringVar(&opt.prompt, "prompt", "", "Story or image prompt")
	fs.StringVar(&opt.file, "file", "", "Read story text from this file instead of generating it")
	fs.StringVar(&opt.title, "title", "", "Storybook title")
	fs.StringVar(&opt.genre, "genre", "", "Genre (default from config)")
	fs.StringVar(&opt.length, "length", "", "Length tier (default from config)")
	fs.StringVar(&opt.style, "style", "", "Visual style (default from config)")
	fs.StringVar(&opt.voice, "voice", "", "Narration voice")
	fs.Float64Var(&opt.speed, "speed", 0, "Narration speed (0.7 - 1.3)")
	fs.IntVar(&opt.scenes, "scenes", 0, "Scene count (default from config)")
	fs.Int64Var(&opt.seed, "seed", 0, "Deterministic seed (0 derives one from the prompt)")
	fs.StringVar(&opt.out, "out", "", "Output path")
	fs.BoolVar(&opt.play, "play", false, "Play generated narration through the speaker")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	level := slog.LevelWarn
	if opt.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	_ = godotenv.Load()

	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyDefaults(&opt, cfg.Defaults)

	ctx := context.Background()
	g, err := buildGenerator(ctx, cfg, opt.offline)
	if err != nil {
		return err
	}

	switch cmd {
	case "generate":
		return generateText(ctx, g, opt)
	case "enhance":
		return enhancePrompt(ctx, g, opt)
	case "storybook":
		return generateStorybook(ctx, g, opt)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
}

func applyDefaults(opt *options, d config.DefaultsConfig) {
	if opt.genre == "" {
		opt.genre = d.Genre
	}
	if opt.length == "" {
		opt.length = d.Length
	}
	if opt.style == "" {
		opt.style = d.Style
	}
	if opt.voice == "" {
		opt.voice = d.Voice
	}
	if opt.scenes <= 0 {
		opt.scenes = d.SceneCount
	}
}

// buildGenerator returns the offline fallback directly, or the full failover
// router over the configured providers.
func buildGenerator(ctx context.Context, cfg *config.Config, offline bool) (generator, error) {
	if offline {
		return fallback.New(), nil
	}

	tr := tracker.New()
	respCache := cache.New(time.Duration(cfg.Cache.MemoryTTL), nil)
	reqClient := request.New(respCache, tr, cfg.Request)

	reg, err := factory.BuildRegistry(ctx, cfg, reqClient)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	return router.New(reg, fallback.New(), router.Config{
		TextTimeout:      time.Duration(cfg.Router.TextTimeout),
		AudioTimeout:     time.Duration(cfg.Router.AudioTimeout),
		ImageTimeout:     time.Duration(cfg.Router.ImageTimeout),
		MinTextChars:     cfg.Router.MinTextChars,
		MinEnhanceChars:  cfg.Router.MinEnhanceChars,
		MinAudioBytes:    cfg.Router.MinAudioBytes,
		BreakerEnabled:   cfg.Router.Breaker.Enabled,
		BreakerThreshold: cfg.Router.Breaker.Threshold,
		BreakerCooldown:  time.Duration(cfg.Router.Breaker.Cooldown),
	}, tr)
}

func generateText(ctx context.Context, g generator, opt options) error {
	if opt.prompt == "" {
		return fmt.Errorf("--prompt is required")
	}

	res, err := g.GenerateText(ctx, gen.TextRequest{
		Prompt: opt.prompt,
		Genre:  model.Genre(opt.genre),
		Length: model.LengthTier(opt.length),
		Seed:   opt.seed,
	})
	if err != nil {
		return err
	}

	out := opt.out
	if out == "" {
		out = "story.txt"
	}
	if err := os.WriteFile(out, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write story: %w", err)
	}
	fmt.Printf("Story written to %s (%d bytes, provider %s)\n", out, len(res.Text), res.Provider)
	return nil
}

func enhancePrompt(ctx context.Context, g generator, opt options) error {
	if opt.prompt == "" {
		return fmt.Errorf("--prompt is required")
	}

	res, err := g.EnhancePrompt(ctx, gen.EnhanceRequest{
		Prompt: opt.prompt,
		Genre:  model.Genre(opt.genre),
		Style:  model.VisualStyle(opt.style),
		Seed:   opt.seed,
	})
	if err != nil {
		return err
	}

	if opt.out != "" {
		if err := os.WriteFile(opt.out, []byte(res.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}
		fmt.Printf("Enhanced prompt written to %s (provider %s)\n", opt.out, res.Provider)
		return nil
	}
	fmt.Println(res.Text)
	return nil
}

func generateStorybook(ctx context.Context, g generator, opt options) error {
	req := story.Request{
		Prompt:     opt.prompt,
		Title:      opt.title,
		Genre:      model.Genre(opt.genre),
		Length:     model.LengthTier(opt.length),
		Style:      model.VisualStyle(opt.style),
		Voice:      opt.voice,
		Speed:      opt.speed,
		SceneCount: opt.scenes,
		Seed:       opt.seed,
		Progress: func(phase string, done, total int) {
			fmt.Printf("\r%-8s %d/%d", phase, done, total)
		},
	}

	if opt.file != "" {
		data, err := os.ReadFile(opt.file)
		if err != nil {
			return fmt.Errorf("failed to read story file: %w", err)
		}
		req.Text = string(data)
	}
	if req.Prompt == "" && req.Text == "" {
		return fmt.Errorf("--prompt or --file is required")
	}

	sb, err := story.NewAssembler(g).Assemble(ctx, req)
	fmt.Println()
	if err != nil {
		return err
	}

	out := opt.out
	if out == "" {
		out = "storybook.json"
	}
	data, err := json.MarshalIndent(sb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storybook: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write storybook: %w", err)
	}

	fmt.Printf("Storybook %q: %d pages, %d asset errors -> %s\n",
		sb.Title, len(sb.Pages), len(sb.Metadata.Errors), out)

	if sb.Audio != nil && len(sb.Audio.Data) > 0 {
		audioPath := audioPathFor(out, sb.Audio.Format)
		if err := os.WriteFile(audioPath, sb.Audio.Data, 0o644); err != nil {
			slog.Warn("Failed to write narration", "path", audioPath, "error", err)
		} else {
			fmt.Printf("Narration -> %s\n", audioPath)
		}

		if opt.play {
			playNarration(sb.Title, sb.Audio.Data, sb.Metadata.TotalDuration)
		}
	} else if opt.play {
		fmt.Println("No narration audio to play (descriptor only)")
	}

	return nil
}

func audioPathFor(bookPath, format string) string {
	ext := "." + format
	if format == "" {
		ext = ".mp3"
	}
	base := bookPath[:len(bookPath)-len(filepath.Ext(bookPath))]
	return base + ext
}

// playNarration blocks until the clip finishes or the estimate runs out.
func playNarration(title string, data []byte, estimate time.Duration) {
	player := audio.New(config.AudioConfig{PreviewEnabled: true, Volume: 0.8})
	defer player.Shutdown()

	if err := player.Enqueue(title, data); err != nil {
		slog.Warn("Preview failed", "error", err)
		return
	}

	fmt.Println("Playing narration...")
	deadline := time.Now().Add(estimate + 15*time.Second)
	time.Sleep(500 * time.Millisecond)
	for player.Busy() && time.Now().Before(deadline) {
		time.Sleep(200 * time.Millisecond)
	}
}
