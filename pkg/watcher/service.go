// Package watcher polls the story inbox directory. Text files dropped there
// are handed to the assembly pipeline and moved out of the way, so the inbox
// doubles as a crude batch interface for people who don't want to curl.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
)

// Handler consumes one inbox story. A non-nil error sends the file to the
// failed directory instead of processed.
type Handler func(ctx context.Context, title, text string) error

// Service monitors the inbox directory for new story files.
type Service struct {
	dir      string
	interval time.Duration
	handle   Handler
}

// NewService creates an inbox watcher. The inbox directory and its
// processed/failed subdirectories are created if missing.
func NewService(cfg config.InboxConfig, handle Handler) (*Service, error) {
	dir := cfg.Path
	if dir == "" {
		dir = "./inbox"
	}

	for _, d := range []string{dir, filepath.Join(dir, "processed"), filepath.Join(dir, "failed")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create inbox dir: %w", err)
		}
	}

	interval := time.Duration(cfg.Interval)
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Service{
		dir:      dir,
		interval: interval,
		handle:   handle,
	}, nil
}

// Run polls the inbox until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	slog.Info("Inbox watcher started", "dir", s.dir, "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Inbox watcher stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep processes every pending story file once, oldest name first, and
// returns how many were handled successfully.
func (s *Service) Sweep(ctx context.Context) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("Inbox read failed", "dir", s.dir, "error", err)
		return 0
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	handled := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return handled
		}
		if s.process(ctx, name) {
			handled++
		}
	}
	return handled
}

func (s *Service) process(ctx context.Context, name string) bool {
	full := filepath.Join(s.dir, name)

	data, err := os.ReadFile(full)
	if err != nil {
		slog.Warn("Inbox file unreadable", "file", name, "error", err)
		return false
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		slog.Warn("Inbox file empty", "file", name)
		s.move(name, "failed")
		return false
	}

	slog.Info("Inbox story picked up", "file", name, "bytes", len(data))
	if err := s.handle(ctx, titleFromName(name), text); err != nil {
		slog.Error("Inbox story failed", "file", name, "error", err)
		s.move(name, "failed")
		return false
	}

	s.move(name, "processed")
	return true
}

func (s *Service) move(name, sub string) {
	src := filepath.Join(s.dir, name)
	dst := filepath.Join(s.dir, sub, name)
	if _, err := os.Stat(dst); err == nil {
		// Same name dropped twice; keep both.
		dst = filepath.Join(s.dir, sub, fmt.Sprintf("%d-%s", time.Now().Unix(), name))
	}
	if err := os.Rename(src, dst); err != nil {
		slog.Warn("Inbox move failed", "file", name, "error", err)
	}
}

// titleFromName turns "the_lost_fox.txt" into "the lost fox".
func titleFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
