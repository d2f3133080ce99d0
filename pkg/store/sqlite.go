// Package store persists storybooks, application state and cached provider
// responses in SQLite. Storybook payloads and cache values are stored as
// gzip-compressed blobs; image and audio bytes make them large.
package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/db"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

// gzipMagic identifies compressed blobs; plain blobs from older rows pass
// through unchanged.
var gzipMagic = []byte{0x1f, 0x8b}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Storybooks ---

func (s *SQLiteStore) SaveStorybook(ctx context.Context, sb *model.Storybook) error {
	if sb == nil || sb.ID == "" {
		return fmt.Errorf("storybook missing id")
	}

	payload, err := json.Marshal(sb)
	if err != nil {
		return fmt.Errorf("failed to marshal storybook: %w", err)
	}
	compressed, err := compress(payload)
	if err != nil {
		return fmt.Errorf("failed to compress storybook: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO storybooks (id, title, genre, style, page_count, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, genre=excluded.genre, style=excluded.style,
		   page_count=excluded.page_count, payload=excluded.payload`,
		sb.ID, sb.Title, string(sb.Genre), string(sb.Style), len(sb.Pages), compressed, sb.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save storybook: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetStorybook(ctx context.Context, id string) (*model.Storybook, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM storybooks WHERE id = ?`, id)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	payload, err := decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress storybook %s: %w", id, err)
	}

	var sb model.Storybook
	if err := json.Unmarshal(payload, &sb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storybook %s: %w", id, err)
	}
	return &sb, nil
}

func (s *SQLiteStore) ListStorybooks(ctx context.Context, limit int) ([]model.Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, genre, page_count, created_at
		 FROM storybooks ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var sum model.Summary
		var genre string
		var created time.Time
		if err := rows.Scan(&sum.ID, &sum.Title, &genre, &sum.PageCount, &created); err != nil {
			return nil, err
		}
		sum.Genre = model.Genre(genre)
		sum.CreatedAt = created
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteStorybook(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM storybooks WHERE id = ?`, id)
	return err
}

// --- Cache ---

func (s *SQLiteStore) GetCache(ctx context.Context, key string) ([]byte, bool) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	val, err := decompress(blob)
	if err != nil {
		slog.Error("Cache decompress failed, dropping entry", "key", key, "error", err)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
		return nil, false
	}
	return val, true
}

func (s *SQLiteStore) HasCache(ctx context.Context, key string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM cache WHERE key = ?`, key)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, val []byte) error {
	compressed, err := compress(val)
	if err != nil {
		return fmt.Errorf("failed to compress cache value: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cache (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, created_at=CURRENT_TIMESTAMP`,
		key, compressed)
	return err
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM persistent_state WHERE key = ?`, key)
	var val string
	if err := row.Scan(&val); err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persistent_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, val)
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM persistent_state WHERE key = ?`, key)
	return err
}

// --- Compression helpers ---

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
