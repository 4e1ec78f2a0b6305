package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnalyzeImageSendsInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-3-pro-preview:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var payload struct {
			Contents []struct {
				Parts []map[string]interface{} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		parts := payload.Contents[0].Parts
		if len(parts) != 2 {
			t.Fatalf("expected inlineData + text parts, got %d", len(parts))
		}
		inline, ok := parts[0]["inlineData"].(map[string]interface{})
		if !ok || inline["data"] != "aGVsbG8=" || inline["mimeType"] != "image/png" {
			t.Errorf("unexpected inlineData part: %v", parts[0])
		}
		if parts[1]["text"] != "who is this" {
			t.Errorf("unexpected text part: %v", parts[1])
		}

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A sword cultivator."}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	text, err := g.AnalyzeImage(context.Background(), "aGVsbG8=", "image/png", "who is this")
	if err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
	if text != "A sword cultivator." {
		t.Fatalf("text = %q", text)
	}
}

func TestAnalyzeImageDefaultsPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Contents []struct {
				Parts []map[string]interface{} `json:"parts"`
			} `json:"contents"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		text, _ := payload.Contents[0].Parts[1]["text"].(string)
		if !strings.Contains(text, "web novel context") {
			t.Errorf("default prompt missing, got %q", text)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	if _, err := g.AnalyzeImage(context.Background(), "aGVsbG8=", "image/png", "  "); err != nil {
		t.Fatalf("AnalyzeImage: %v", err)
	}
}

func TestGenerateImageReturnsDataURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-3-pro-image-preview:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var payload struct {
			GenerationConfig struct {
				ImageConfig map[string]interface{} `json:"imageConfig"`
			} `json:"generationConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if payload.GenerationConfig.ImageConfig["aspectRatio"] != "16:9" {
			t.Errorf("aspect ratio = %v", payload.GenerationConfig.ImageConfig["aspectRatio"])
		}

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":"cG5n"}}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	image, err := g.GenerateImage(context.Background(), "a misty mountain sect", "16:9")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if image != "data:image/png;base64,cG5n" {
		t.Fatalf("image = %q", image)
	}
}

func TestGenerateImageNoImageInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini("test-key", server.URL, server.Client())
	if _, err := g.GenerateImage(context.Background(), "prompt", ""); err == nil {
		t.Fatal("expected error when response carries no image")
	}
}
