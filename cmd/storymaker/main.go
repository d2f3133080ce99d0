package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/internal/api"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/audio"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/cache"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/db"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/factory"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/fallback"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/registry"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/router"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/jobs"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/logging"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/probe"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/story"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/store"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/version"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/watcher"
)

var (
	configPath = flag.String("config", "configs/storymaker.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Story Maker started", "version", version.Version)

	dbConn, st, err := initDB(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	tr := tracker.New()
	rt, reg, err := initPipeline(ctx, cfg, st, tr)
	if err != nil {
		return err
	}

	if err := probe.Summarize(probe.Run(ctx, probe.All(st, reg))); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	assembler := story.NewAssembler(rt)

	player := audio.New(cfg.Audio)
	defer player.Shutdown()

	if cfg.Inbox.Enabled {
		if err := startInbox(ctx, cfg, assembler, st); err != nil {
			slog.Warn("Inbox watcher not started", "error", err)
		}
	}

	jobStore := jobs.NewStore[jobs.Job](time.Duration(cfg.Jobs.TTL))

	handlers := api.Handlers{
		Generate:   api.NewGenerateHandler(rt, cfg.Defaults),
		Storybooks: api.NewStorybookHandler(ctx, assembler, jobStore, st, cfg.Defaults),
		Providers:  api.NewProvidersHandler(reg, rt, tr),
		Stats:      api.NewStatsHandler(tr, logging.GlobalLogCapture),
		Preview:    api.NewPreviewHandler(player, st),
	}

	return runServerLifecycle(ctx, api.NewServer(cfg.Server.Address, handlers))
}

func initDB(cfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Cache.Persistent && cfg.Cache.Prune > 0 {
		if err := dbConn.PruneCache(time.Duration(cfg.Cache.Prune)); err != nil {
			slog.Warn("Cache prune failed", "error", err)
		}
	}

	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// initPipeline wires cache, outbound client, provider registry and the
// failover router.
func initPipeline(ctx context.Context, cfg *config.Config, st store.Store, tr *tracker.Tracker) (*router.Router, *registry.Registry, error) {
	var persistent store.CacheStore
	if cfg.Cache.Persistent {
		persistent = st
	}
	respCache := cache.New(time.Duration(cfg.Cache.MemoryTTL), persistent)

	reqClient := request.New(respCache, tr, cfg.Request)

	reg, err := factory.BuildRegistry(ctx, cfg, reqClient)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	rt, err := router.New(reg, fallback.New(), router.Config{
		TextTimeout:      time.Duration(cfg.Router.TextTimeout),
		AudioTimeout:     time.Duration(cfg.Router.AudioTimeout),
		ImageTimeout:     time.Duration(cfg.Router.ImageTimeout),
		MinTextChars:     cfg.Router.MinTextChars,
		MinEnhanceChars:  cfg.Router.MinEnhanceChars,
		MinAudioBytes:    cfg.Router.MinAudioBytes,
		BreakerEnabled:   cfg.Router.Breaker.Enabled,
		BreakerThreshold: cfg.Router.Breaker.Threshold,
		BreakerCooldown:  time.Duration(cfg.Router.Breaker.Cooldown),
		HistoryPath:      cfg.History.Path,
		HistoryEnabled:   cfg.History.Enabled,
	}, tr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build router: %w", err)
	}

	return rt, reg, nil
}

// startInbox runs the story inbox watcher: dropped text files become
// storybooks with the configured defaults.
func startInbox(ctx context.Context, cfg *config.Config, assembler *story.Assembler, st store.StorybookStore) error {
	svc, err := watcher.NewService(cfg.Inbox, func(hctx context.Context, title, text string) error {
		sb, err := assembler.Assemble(hctx, story.Request{
			Title:      title,
			Text:       text,
			Genre:      model.Genre(cfg.Defaults.Genre),
			Length:     model.LengthTier(cfg.Defaults.Length),
			Style:      model.VisualStyle(cfg.Defaults.Style),
			Voice:      cfg.Defaults.Voice,
			SceneCount: cfg.Defaults.SceneCount,
		})
		if err != nil {
			return err
		}
		return st.SaveStorybook(hctx, sb)
	})
	if err != nil {
		return err
	}

	go svc.Run(ctx)
	return nil
}

func runServerLifecycle(ctx context.Context, srv *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
