package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/config"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{
		LLMBaseURL: baseURL,
		LLMAPIKey:  "test-key",
		LLMModel:   "test-model",
		LLMTimeout: 5 * time.Second,
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "jawaban model"}},
			},
		})
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).Complete(context.Background(), "sistem", "pengguna", 0.3)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "jawaban model" {
		t.Fatalf("unexpected text %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("unexpected model %v", gotBody["model"])
	}
	if gotBody["temperature"].(float64) != 0.3 {
		t.Fatalf("unexpected temperature %v", gotBody["temperature"])
	}
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "s", "u", 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "s", "u", 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCompleteConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Closed on purpose.

	_, err := newTestClient(srv.URL).Complete(context.Background(), "s", "u", 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[{"a":1}]`, `[{"a":1}]`},
		{"fence with language", "```json\n[1,2]\n```", "[1,2]"},
		{"fence without language", "```\n[1,2]\n```", "[1,2]"},
		{"single line fence", "```[1,2]```", "[1,2]"},
		{"surrounding whitespace", "  \n```json\n[1,2]\n```\n  ", "[1,2]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
