package views

import (
	"fmt"
	"strings"
)

// ItemRowData is one rendered row of a tab list.
type ItemRowData struct {
	Title            string
	Category         string
	Selected         bool
	Done             bool
	Missed           bool
	Tracked          bool
	Running          bool
	CompletedMinutes int
	RequiredMinutes  int
	Urgency          string
	Due              string
}

type TabPanelData struct {
	Tab          string
	QuickAddView string
	CaptureMode  bool
	Rows         []ItemRowData
}

type HelpPanelData struct {
	Tab      string
	Bindings []string
}

func RenderTabPanel(data TabPanelData) string {
	var b strings.Builder
	b.WriteString(data.Tab + ":\n")
	if data.CaptureMode {
		b.WriteString(data.QuickAddView + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("(empty — press a to add)")
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		b.WriteString(renderItemRow(row) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func renderItemRow(row ItemRowData) string {
	cursor := " "
	if row.Selected {
		cursor = ">"
	}

	var line string
	if row.Tracked {
		marker := " "
		if row.Running {
			marker = "▶"
		}
		line = fmt.Sprintf("%s %s %s %3d/%3dm %s",
			cursor, marker, progressBar(row.CompletedMinutes, row.RequiredMinutes, 10), row.CompletedMinutes, row.RequiredMinutes, row.Title)
	} else {
		box := "[ ]"
		if row.Done {
			box = "[x]"
		}
		if row.Missed {
			box = "[!]"
		}
		line = fmt.Sprintf("%s %s %s", cursor, box, row.Title)
	}
	if row.Category != "" && row.Category != "uncategorized" {
		line += " #" + row.Category
	}
	if row.Due != "" {
		line += " (due " + row.Due + ")"
	}

	switch row.Urgency {
	case "overdue", "urgent":
		return urgentStyle.Render(line)
	case "warning":
		return warningStyle.Render(line)
	}
	if row.Missed {
		return missedStyle.Render(line)
	}
	if row.Done {
		return doneStyle.Render(line)
	}
	return line
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat("-", width) + "]"
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return "command:\n/" + input + "▌"
}

// RenderApprovalPanel lists pending AI output awaiting a y/n decision.
func RenderApprovalPanel(title string, rows []string) string {
	var b strings.Builder
	b.WriteString(title + " (y accept, n discard):\n")
	for i, row := range rows {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, row))
	}
	return strings.TrimSpace(b.String())
}

func RenderSummaryPanel(markdown string) string {
	return "weekly summary:\n" + RenderMarkdown(markdown)
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("help (%s):\n", data.Tab))
	for _, binding := range data.Bindings {
		b.WriteString(binding + "\n")
	}
	return strings.TrimSpace(b.String())
}
