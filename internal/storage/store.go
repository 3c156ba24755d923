// Package storage persists the application as keyed JSON documents in
// SQLite, mirroring a browser local-storage layout: one document per key,
// last write wins, no cross-process coordination.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jingm4128/mcadence/internal/model"
)

const storeTimeLayout = time.RFC3339Nano

// Document keys. Each persists and resets independently.
const (
	KeyState      = "state"
	KeyCategories = "categories"
	KeySettings   = "settings"
	KeyActiveTab  = "active_tab"
	KeyAISettings = "ai_settings"
)

var ErrNotFound = errors.New("storage: not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if err := MigrateUp(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetDocument reads the raw JSON under key.
func (s *Store) GetDocument(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

// PutDocument upserts the document under key.
func (s *Store) PutDocument(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(storeTimeLayout),
	)
	return err
}

// DeleteDocument removes a single key. Missing keys are not an error.
func (s *Store) DeleteDocument(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	return err
}

// LoadState hydrates the primary state document. Corrupt JSON, a missing
// document, or a structurally invalid document (no items/actions arrays)
// all degrade to an empty state: the app never fails to start over bad
// local data.
func (s *Store) LoadState(ctx context.Context) model.AppState {
	raw, err := s.GetDocument(ctx, KeyState)
	if err != nil {
		return model.EmptyState()
	}
	var loaded model.AppState
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return model.EmptyState()
	}
	if loaded.Items == nil || loaded.Actions == nil {
		return model.EmptyState()
	}
	if loaded.Categories == nil {
		loaded.Categories = []model.Category{}
	}
	return loaded
}

func (s *Store) SaveState(ctx context.Context, st model.AppState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("storage: encode state: %w", err)
	}
	return s.PutDocument(ctx, KeyState, raw)
}

// LoadCategories falls back to the built-in taxonomy when no categories
// document is stored or it fails to parse.
func (s *Store) LoadCategories(ctx context.Context) []model.Category {
	raw, err := s.GetDocument(ctx, KeyCategories)
	if err != nil {
		return model.DefaultCategories()
	}
	var categories []model.Category
	if err := json.Unmarshal(raw, &categories); err != nil || len(categories) == 0 {
		return model.DefaultCategories()
	}
	return categories
}

func (s *Store) SaveCategories(ctx context.Context, categories []model.Category) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("storage: encode categories: %w", err)
	}
	return s.PutDocument(ctx, KeyCategories, raw)
}

func (s *Store) LoadSettings(ctx context.Context) Settings {
	raw, err := s.GetDocument(ctx, KeySettings)
	if err != nil {
		return DefaultSettings()
	}
	settings := DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return DefaultSettings()
	}
	return settings
}

func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("storage: encode settings: %w", err)
	}
	return s.PutDocument(ctx, KeySettings, raw)
}

func (s *Store) LoadActiveTab(ctx context.Context) model.Tab {
	raw, err := s.GetDocument(ctx, KeyActiveTab)
	if err != nil {
		return model.TabDayToDay
	}
	tab := model.Tab(string(raw))
	if !tab.IsValid() {
		return model.TabDayToDay
	}
	return tab
}

func (s *Store) SaveActiveTab(ctx context.Context, tab model.Tab) error {
	return s.PutDocument(ctx, KeyActiveTab, []byte(tab))
}

func (s *Store) LoadAISettings(ctx context.Context) AISettings {
	raw, err := s.GetDocument(ctx, KeyAISettings)
	if err != nil {
		return AISettings{}
	}
	var settings AISettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return AISettings{}
	}
	return settings
}

func (s *Store) SaveAISettings(ctx context.Context, settings AISettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("storage: encode ai settings: %w", err)
	}
	return s.PutDocument(ctx, KeyAISettings, raw)
}

// Reset clears every document. Callers flush any pending debounced write
// first so the clear cannot be overwritten by a stale save.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents`)
	return err
}
