package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"novelweaver/models"
)

func TestGeminiStreamParsesSSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}` + "\n\n"))
		w.Write([]byte(`data: {"candidates":[{"content":{"parts":[{"text":" world"}]}}]}` + "\n\n"))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	fragments, err := g.Stream(context.Background(), Request{
		Prompt: "translate this",
		Config: models.TranslationConfig{Temperature: 0.7},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var builder strings.Builder
	for f := range fragments {
		if f.Err != nil {
			t.Fatalf("fragment error: %v", f.Err)
		}
		builder.WriteString(f.Text)
	}
	if got := builder.String(); got != "Hello world" {
		t.Fatalf("streamed text = %q", got)
	}
}

func TestGeminiStreamNonRetryableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid request"}}`))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	_, err := g.Stream(context.Background(), Request{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "invalid request") {
		t.Fatalf("err = %v", err)
	}
}

func TestGeminiStreamRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`data: {"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}` + "\n"))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	fragments, err := g.Stream(context.Background(), Request{Prompt: "x"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	var out strings.Builder
	for f := range fragments {
		if f.Err != nil {
			t.Fatalf("fragment error: %v", f.Err)
		}
		out.WriteString(f.Text)
	}
	if out.String() != "ok" {
		t.Fatalf("streamed text = %q", out.String())
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d", attempts)
	}
}
