package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const parseSystemPrompt = `You convert free-form productivity notes into structured items.
Respond with a JSON object: {"items": [{"tab": "dayToDay"|"hitMyGoal"|"spendMyTime",
"title": string, "requiredMinutes": int (spendMyTime only),
"frequency": "daily"|"weekly"|"monthly"|"annually" (optional),
"interval": int (optional)}]}. No other keys, no prose.`

const summarySystemPrompt = `You write short, encouraging weekly reviews of personal
productivity statistics. Respond in markdown, at most 150 words, no headings deeper
than level two.`

const suggestSystemPrompt = `You review productivity statistics and suggest cleanup.
Respond with a JSON object: {"suggestions": [{"itemId": string,
"action": "archive"|"delete", "reason": string}]}. Only reference the item ids you
were given. No other keys, no prose.`

type parseResponse struct {
	Items []ItemProposal `json:"items"`
}

type suggestResponse struct {
	Suggestions []CleanupSuggestion `json:"suggestions"`
}

// ParseText asks the provider to turn free text into item proposals.
func (c *Client) ParseText(ctx context.Context, text string) ([]ItemProposal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	raw, err := c.Complete(ctx, parseSystemPrompt, text, true)
	if err != nil {
		return nil, err
	}
	var parsed parseResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return parsed.Items, nil
}

// Summarize asks the provider for a markdown review of the period's stats.
func (c *Client) Summarize(ctx context.Context, stats Stats) (string, error) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("ai: encode stats: %w", err)
	}
	return c.Complete(ctx, summarySystemPrompt, string(payload), false)
}

// SuggestCleanup asks the provider which stale items to archive or delete.
func (c *Client) SuggestCleanup(ctx context.Context, stats Stats) ([]CleanupSuggestion, error) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("ai: encode stats: %w", err)
	}
	raw, err := c.Complete(ctx, suggestSystemPrompt, string(payload), true)
	if err != nil {
		return nil, err
	}
	var parsed suggestResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return parsed.Suggestions, nil
}
