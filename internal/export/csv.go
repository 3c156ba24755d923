package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

const csvTimeLayout = time.RFC3339

// itemColumns is the fixed items.csv schema. Variant-specific columns are
// left blank for the non-applicable variant.
var itemColumns = []string{
	"id", "tab", "title", "base_title", "category", "color", "sort_key",
	"status", "is_archived", "archived_at", "is_deleted", "deleted_at",
	"created_at", "updated_at", "period_key",
	"is_done", "completed_at",
	"required_minutes", "completed_minutes", "period_start", "period_end",
}

var actionColumns = []string{"id", "item_id", "tab", "type", "timestamp", "payload"}

// WriteItemsCSV writes the items.csv half of a CSV backup.
func WriteItemsCSV(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(itemColumns); err != nil {
		return err
	}
	for _, item := range items {
		row := []string{
			item.ID,
			string(item.Tab),
			item.Title,
			item.BaseTitle,
			item.CategoryID,
			"", // color is a category display concern; kept for schema stability
			strconv.FormatInt(item.SortKey, 10),
			string(item.Status),
			strconv.FormatBool(item.IsArchived),
			formatTimePtr(item.ArchivedAt),
			strconv.FormatBool(item.IsDeleted),
			formatTimePtr(item.DeletedAt),
			item.CreatedAt.Format(csvTimeLayout),
			item.UpdatedAt.Format(csvTimeLayout),
			item.PeriodKey,
			"", "", // checklist columns
			"", "", "", "", // tracked columns
		}
		switch item.Tab.Kind() {
		case model.KindChecklist:
			row[15] = strconv.FormatBool(item.IsDone)
			row[16] = formatTimePtr(item.CompletedAt)
		case model.KindTracked:
			row[17] = strconv.Itoa(item.RequiredMinutes)
			row[18] = strconv.Itoa(item.CompletedMinutes)
			row[19] = formatTimePtr(item.PeriodStart)
			row[20] = formatTimePtr(item.PeriodEnd)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActionsCSV writes the actions.csv half. Payloads are JSON-encoded
// into a single column.
func WriteActionsCSV(w io.Writer, actions []model.ActionEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(actionColumns); err != nil {
		return err
	}
	for _, entry := range actions {
		payload := ""
		if entry.Payload != nil {
			raw, err := json.Marshal(entry.Payload)
			if err != nil {
				return fmt.Errorf("export: encode action payload %s: %w", entry.ID, err)
			}
			payload = string(raw)
		}
		row := []string{
			entry.ID,
			entry.ItemID,
			string(entry.Tab),
			string(entry.Type),
			entry.Timestamp.Format(csvTimeLayout),
			payload,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadItemsCSV parses an items.csv file back into items.
func ReadItemsCSV(r io.Reader) ([]model.Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(itemColumns)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: read items csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	items := make([]model.Item, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item := model.Item{
			ID:         row[0],
			Tab:        model.Tab(row[1]),
			Title:      row[2],
			BaseTitle:  row[3],
			CategoryID: row[4],
			Status:     model.Status(row[7]),
			PeriodKey:  row[14],
		}
		item.SortKey, _ = strconv.ParseInt(row[6], 10, 64)
		item.IsArchived, _ = strconv.ParseBool(row[8])
		item.ArchivedAt = parseTimePtr(row[9])
		item.IsDeleted, _ = strconv.ParseBool(row[10])
		item.DeletedAt = parseTimePtr(row[11])
		item.CreatedAt, _ = time.Parse(csvTimeLayout, row[12])
		item.UpdatedAt, _ = time.Parse(csvTimeLayout, row[13])
		switch item.Tab.Kind() {
		case model.KindChecklist:
			item.IsDone, _ = strconv.ParseBool(row[15])
			item.CompletedAt = parseTimePtr(row[16])
		case model.KindTracked:
			item.RequiredMinutes, _ = strconv.Atoi(row[17])
			item.CompletedMinutes, _ = strconv.Atoi(row[18])
			item.PeriodStart = parseTimePtr(row[19])
			item.PeriodEnd = parseTimePtr(row[20])
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadActionsCSV parses an actions.csv file back into log entries.
func ReadActionsCSV(r io.Reader) ([]model.ActionEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(actionColumns)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: read actions csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	actions := make([]model.ActionEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry := model.ActionEntry{
			ID:     row[0],
			ItemID: row[1],
			Tab:    model.Tab(row[2]),
			Type:   model.ActionType(row[3]),
		}
		entry.Timestamp, _ = time.Parse(csvTimeLayout, row[4])
		if row[5] != "" {
			var payload map[string]any
			if err := json.Unmarshal([]byte(row[5]), &payload); err == nil {
				entry.Payload = payload
			}
		}
		actions = append(actions, entry)
	}
	return actions, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(csvTimeLayout)
}

func parseTimePtr(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(csvTimeLayout, v)
	if err != nil {
		return nil
	}
	return &t
}
