package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"novelweaver/translator"
)

func TestImageEndpointsRequireGemini(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/image/analyze", map[string]interface{}{
		"image": "aGVsbG8=", "mime_type": "image/png",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("analyze status = %d, want 503", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/image/generate", map[string]interface{}{"prompt": "x"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("generate status = %d, want 503", rec.Code)
	}
}

func TestAnalyzeImageEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A city of jade towers."}]}}]}`))
	}))
	defer server.Close()

	h, _ := newTestHandler(t)
	h.Gemini = translator.NewGemini("test-key", server.URL, server.Client())

	rec := doRequest(t, h, http.MethodPost, "/image/analyze", map[string]interface{}{
		"image": "aGVsbG8=", "mime_type": "image/png", "prompt": "describe the setting",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["text"] != "A city of jade towers." {
		t.Fatalf("text = %q", resp["text"])
	}

	rec = doRequest(t, h, http.MethodPost, "/image/analyze", map[string]interface{}{"prompt": "no image"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing image status = %d, want 400", rec.Code)
	}
}

func TestGenerateImageEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"cG5n"}}]}}]}`))
	}))
	defer server.Close()

	h, _ := newTestHandler(t)
	h.Gemini = translator.NewGemini("test-key", server.URL, server.Client())

	rec := doRequest(t, h, http.MethodPost, "/image/generate", map[string]interface{}{
		"prompt": "cover art", "aspect_ratio": "2:3",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["image"] != "data:image/png;base64,cG5n" {
		t.Fatalf("image = %q", resp["image"])
	}

	rec = doRequest(t, h, http.MethodPost, "/image/generate", map[string]interface{}{"aspect_ratio": "1:1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing prompt status = %d, want 400", rec.Code)
	}
}
