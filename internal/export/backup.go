// Package export renders full-state backups (JSON and CSV) and merges them
// back in. Import never talks to storage: it produces a new AppState the
// caller loads through the reducer and flushes immediately.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

const backupVersion = 2

type ImportMode string

const (
	// ImportOverwrite replaces everything with the backup contents.
	ImportOverwrite ImportMode = "overwrite"
	// ImportCombine merges by id with the imported side winning for items
	// and categories; action logs are concatenated, not deduplicated.
	ImportCombine ImportMode = "combine"
)

var ErrInvalidImportMode = errors.New("export: invalid import mode")

// Backup is the JSON backup document.
type Backup struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Items      []model.Item        `json:"items"`
	Actions    []model.ActionEntry `json:"actions"`
	Categories []model.Category    `json:"categories"`
}

func NewBackup(st model.AppState, now time.Time) Backup {
	return Backup{
		Version:    backupVersion,
		ExportedAt: now,
		Items:      st.Items,
		Actions:    st.Actions,
		Categories: st.Categories,
	}
}

func MarshalBackup(b Backup) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// ParseBackup decodes a backup document, rejecting structurally invalid
// files (missing items/actions arrays) before anything is applied.
func ParseBackup(raw []byte) (Backup, error) {
	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return Backup{}, fmt.Errorf("export: parse backup: %w", err)
	}
	if b.Items == nil || b.Actions == nil {
		return Backup{}, errors.New("export: backup missing items or actions")
	}
	if b.Categories == nil {
		b.Categories = []model.Category{}
	}
	return b, nil
}

// Merge combines the current state with a backup under the given mode and
// returns the resulting state.
func Merge(current model.AppState, b Backup, mode ImportMode) (model.AppState, error) {
	switch mode {
	case ImportOverwrite:
		return model.AppState{
			Items:      b.Items,
			Actions:    b.Actions,
			Categories: b.Categories,
		}, nil
	case ImportCombine:
		return combine(current, b), nil
	default:
		return model.AppState{}, fmt.Errorf("%w: %q", ErrInvalidImportMode, mode)
	}
}

func combine(current model.AppState, b Backup) model.AppState {
	items := make([]model.Item, 0, len(current.Items)+len(b.Items))
	imported := make(map[string]model.Item, len(b.Items))
	for _, item := range b.Items {
		imported[item.ID] = item
	}
	seen := make(map[string]bool, len(current.Items))
	for _, item := range current.Items {
		if in, ok := imported[item.ID]; ok {
			items = append(items, in)
		} else {
			items = append(items, item)
		}
		seen[item.ID] = true
	}
	for _, item := range b.Items {
		if !seen[item.ID] {
			items = append(items, item)
		}
	}

	categories := make([]model.Category, 0, len(current.Categories)+len(b.Categories))
	importedCats := make(map[string]model.Category, len(b.Categories))
	for _, cat := range b.Categories {
		importedCats[cat.ID] = cat
	}
	seenCats := make(map[string]bool, len(current.Categories))
	for _, cat := range current.Categories {
		if in, ok := importedCats[cat.ID]; ok {
			categories = append(categories, in)
		} else {
			categories = append(categories, cat)
		}
		seenCats[cat.ID] = true
	}
	for _, cat := range b.Categories {
		if !seenCats[cat.ID] {
			categories = append(categories, cat)
		}
	}

	actions := make([]model.ActionEntry, 0, len(current.Actions)+len(b.Actions))
	actions = append(actions, current.Actions...)
	actions = append(actions, b.Actions...)

	return model.AppState{Items: items, Actions: actions, Categories: categories}
}
