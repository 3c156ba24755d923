package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func chatServer(t *testing.T, hits *int64, delay time.Duration, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization header = %q", got)
		}
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"` + content + `"}}]}`))
	}))
}

func TestCompleteReturnsFirstChoiceContent(t *testing.T) {
	var hits int64
	server := chatServer(t, &hits, 0, "hello")
	defer server.Close()

	client := NewClient(Config{Provider: "openai", APIKey: "key", Model: "m", BaseURL: server.URL})
	got, err := client.Complete(context.Background(), "sys", "user", false)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "hello" {
		t.Fatalf("content = %q", got)
	}
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	client := NewClient(Config{Provider: "openai"})
	if _, err := client.Complete(context.Background(), "s", "u", false); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestCompleteCoalescesIdenticalConcurrentRequests(t *testing.T) {
	var hits int64
	server := chatServer(t, &hits, 50*time.Millisecond, "shared")
	defer server.Close()

	client := NewClient(Config{Provider: "openai", APIKey: "key", Model: "m", BaseURL: server.URL})

	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got, err := client.Complete(context.Background(), "sys", "same prompt", true)
			if err != nil {
				t.Errorf("complete: %v", err)
				return
			}
			results[i] = got
		}(i)
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Fatalf("expected 1 provider call, got %d", got)
	}
	for _, r := range results {
		if r != "shared" {
			t.Fatalf("results = %v", results)
		}
	}
}

func TestCompleteDistinctRequestsAreNotCoalesced(t *testing.T) {
	var hits int64
	server := chatServer(t, &hits, 0, "ok")
	defer server.Close()

	client := NewClient(Config{Provider: "openai", APIKey: "key", Model: "m", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), "sys", "first", false); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := client.Complete(context.Background(), "sys", "second", false); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
}

func TestCompleteClassifiesProviderStatus(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, "", ErrAuth},
		{http.StatusForbidden, "", ErrAuth},
		{http.StatusTooManyRequests, "", ErrRateLimited},
		{http.StatusPaymentRequired, "", ErrBilling},
		{http.StatusBadRequest, `{"error":"quota exceeded"}`, ErrBilling},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		client := NewClient(Config{Provider: "openai", APIKey: "key", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "s", "u", false)
		server.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Provider: "openai", APIKey: "key", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), "s", "u", false); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestParseTextDecodesProposals(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"items\":[{\"tab\":\"dayToDay\",\"title\":\"water plants\",\"frequency\":\"daily\"}]}"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Provider: "openai", APIKey: "key", BaseURL: server.URL})
	proposals, err := client.ParseText(context.Background(), "water the plants every day")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(proposals) != 1 || proposals[0].Title != "water plants" {
		t.Fatalf("proposals = %+v", proposals)
	}

	// Blank input never reaches the provider.
	if got, err := client.ParseText(context.Background(), "   "); err != nil || got != nil {
		t.Fatalf("blank input: %v, %+v", err, got)
	}
	if atomic.LoadInt64(&hits) != 1 {
		t.Fatalf("provider calls = %d", hits)
	}
}

func TestParseTextMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Provider: "openai", APIKey: "key", BaseURL: server.URL})
	if _, err := client.ParseText(context.Background(), "anything"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestUserMessageCoversCategories(t *testing.T) {
	cases := []error{ErrNoAPIKey, ErrAuth, ErrRateLimited, ErrBilling, ErrMalformedResponse, errors.New("other")}
	seen := make(map[string]bool)
	for _, err := range cases {
		msg := UserMessage(err)
		if msg == "" {
			t.Fatalf("empty message for %v", err)
		}
		if seen[msg] {
			t.Fatalf("duplicate message %q", msg)
		}
		seen[msg] = true
	}
}
