package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Provider failures collapse to a small set of user-facing categories. The
// reducer state is never affected by any of these: proposals are applied
// only after explicit approval.
var (
	ErrNoAPIKey          = errors.New("ai: no api key configured")
	ErrInvalidAPIKey     = errors.New("ai: api key looks invalid")
	ErrAuth              = errors.New("ai: authentication failed")
	ErrRateLimited       = errors.New("ai: rate limited")
	ErrBilling           = errors.New("ai: billing or quota problem")
	ErrMalformedResponse = errors.New("ai: malformed provider response")
)

// ClassifyStatus maps an HTTP status from a provider to a category error.
func ClassifyStatus(status int, body string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrAuth, status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ErrRateLimited, status)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w (status %d)", ErrBilling, status)
	}
	if status >= 400 && strings.Contains(strings.ToLower(body), "quota") {
		return fmt.Errorf("%w (status %d)", ErrBilling, status)
	}
	return fmt.Errorf("ai: provider returned status %d", status)
}

// UserMessage renders a category error as a short message suitable for the
// status bar.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return "add an API key in settings to use AI features"
	case errors.Is(err, ErrInvalidAPIKey), errors.Is(err, ErrAuth):
		return "the configured API key was rejected"
	case errors.Is(err, ErrRateLimited):
		return "the provider is rate limiting requests, try again shortly"
	case errors.Is(err, ErrBilling):
		return "the provider reported a billing or quota problem"
	case errors.Is(err, ErrMalformedResponse):
		return "the provider returned an unreadable response"
	default:
		return "the AI request failed"
	}
}
