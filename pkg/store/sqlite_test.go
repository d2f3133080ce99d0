package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/db"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db init: %v", err)
	}
	s := NewSQLiteStore(d)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorybookRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sb := &model.Storybook{
		ID:    "sb-1",
		Title: "The Lighthouse Keeper",
		Genre: model.GenreFantasy,
		Style: model.StyleWatercolor,
		Pages: []model.Page{
			{Index: 0, Text: "Once upon a time.", WordCount: 4},
			{Index: 1, Text: "The end.", WordCount: 2},
		},
		Metadata:  model.StorybookMetadata{SceneCount: 2, HasImages: true},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := s.SaveStorybook(ctx, sb); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetStorybook(ctx, "sb-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected storybook, got nil")
	}
	if got.Title != sb.Title || len(got.Pages) != 2 || got.Pages[1].Text != "The end." {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Missing id is nil, nil
	missing, err := s.GetStorybook(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing storybook")
	}
}

func TestListStorybooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		sb := &model.Storybook{
			ID:        id,
			Title:     "Story " + id,
			Genre:     model.GenreMystery,
			Pages:     make([]model.Page, i+1),
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveStorybook(ctx, sb); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	sums, err := s.ListStorybooks(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	// Newest first
	if sums[0].ID != "c" || sums[0].PageCount != 3 {
		t.Errorf("unexpected first summary: %+v", sums[0])
	}
}

func TestCacheAndState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, hit := s.GetCache(ctx, "k"); hit {
		t.Error("unexpected cache hit")
	}
	if err := s.SetCache(ctx, "k", []byte("hello world")); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	val, hit := s.GetCache(ctx, "k")
	if !hit || string(val) != "hello world" {
		t.Errorf("cache round trip failed: %q %v", val, hit)
	}
	has, err := s.HasCache(ctx, "k")
	if err != nil || !has {
		t.Errorf("HasCache = %v, %v", has, err)
	}

	if err := s.SetState(ctx, "version", "3"); err != nil {
		t.Fatalf("set state: %v", err)
	}
	v, ok := s.GetState(ctx, "version")
	if !ok || v != "3" {
		t.Errorf("state round trip failed: %q %v", v, ok)
	}
	if err := s.DeleteState(ctx, "version"); err != nil {
		t.Fatalf("delete state: %v", err)
	}
	if _, ok := s.GetState(ctx, "version"); ok {
		t.Error("state should be deleted")
	}
}
