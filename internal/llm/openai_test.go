package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.3 {
			t.Errorf("temperature = %v, want 0.3", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v, want system + user", req.Messages)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  Important \n"}},
			},
		})
	}))
	defer server.Close()

	c, err := NewOpenAIClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	c.SetBaseURL(server.URL)

	got, err := c.Complete(context.Background(), Request{
		System:      "You are an email assistant.",
		Prompt:      "Categorize this email",
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Important" {
		t.Errorf("Complete() = %q, want trimmed %q", got, "Important")
	}
}

func TestOpenAICompleteRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	c, err := NewOpenAIClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	c.SetBaseURL(server.URL)

	got, err := c.Complete(context.Background(), Request{Prompt: "hi", Temperature: 0.7})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want ok", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestOpenAICompleteClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer server.Close()

	c, err := NewOpenAIClient("bad-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	c.SetBaseURL(server.URL)

	if _, err := c.Complete(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("Complete() expected error on 401")
	}
	// Client errors must not be retried.
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("", "gpt-4o-mini"); err == nil {
		t.Error("NewOpenAIClient(\"\") expected error")
	}
	if _, err := NewGrokClient("", "grok-3"); err == nil {
		t.Error("NewGrokClient(\"\") expected error")
	}
}

func TestGrokClientProvider(t *testing.T) {
	c, err := NewGrokClient("k", "grok-3")
	if err != nil {
		t.Fatalf("NewGrokClient() error = %v", err)
	}
	if c.Provider() != "grok" {
		t.Errorf("Provider() = %q, want grok", c.Provider())
	}
	if c.baseURL != grokBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, grokBaseURL)
	}
}
