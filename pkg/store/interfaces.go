package store

import (
	"context"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

// StorybookStore handles storybook persistence.
type StorybookStore interface {
	SaveStorybook(ctx context.Context, sb *model.Storybook) error
	GetStorybook(ctx context.Context, id string) (*model.Storybook, error)
	ListStorybooks(ctx context.Context, limit int) ([]model.Summary, error)
	DeleteStorybook(ctx context.Context, id string) error
}

// CacheStore handles generic key-value caching.
type CacheStore interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	HasCache(ctx context.Context, key string) (bool, error)
	SetCache(ctx context.Context, key string, val []byte) error
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	StorybookStore
	CacheStore
	StateStore

	// Close closes the store connection.
	Close() error
}
