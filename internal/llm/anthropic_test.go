package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %q, want /messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header missing")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MaxTokens <= 0 {
			t.Errorf("max_tokens = %d, must be positive", req.MaxTokens)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Dear Sarah,\n\nThanks for the update."},
			},
		})
	}))
	defer server.Close()

	c, err := NewAnthropicClient("test-key", "claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("NewAnthropicClient() error = %v", err)
	}
	c.SetBaseURL(server.URL)

	got, err := c.Complete(context.Background(), Request{
		Prompt:      "Draft a reply",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Dear Sarah,\n\nThanks for the update." {
		t.Errorf("Complete() = %q", got)
	}
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{},
			"error":   map[string]any{"message": "overloaded"},
		})
	}))
	defer server.Close()

	c, err := NewAnthropicClient("test-key", "claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("NewAnthropicClient() error = %v", err)
	}
	c.SetBaseURL(server.URL)

	if _, err := c.Complete(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("Complete() expected error from API error body")
	}
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient("", "claude-sonnet-4-5"); err == nil {
		t.Error("NewAnthropicClient(\"\") expected error")
	}
}
