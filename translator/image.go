package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	geminiAnalysisModel = "gemini-3-pro-preview"
	geminiImageModel    = "gemini-3-pro-image-preview"

	defaultAnalysisPrompt = "Analyze this image and describe the characters or setting relevant to a web novel context."
)

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AnalyzeImage describes an uploaded image in a web-novel context. The image
// arrives as raw base64 plus its mime type, the way a file input captures it.
func (g *Gemini) AnalyzeImage(ctx context.Context, imageBase64, mimeType, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultAnalysisPrompt
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"inlineData": map[string]any{"data": imageBase64, "mimeType": mimeType}},
					{"text": prompt},
				},
			},
		},
	}

	resp, err := g.generate(ctx, geminiAnalysisModel, payload)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("empty analysis response")
	}
	return text.String(), nil
}

// GenerateImage renders an illustration for the prompt and returns it as a
// PNG data URI.
func (g *Gemini) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	if strings.TrimSpace(aspectRatio) == "" {
		aspectRatio = "1:1"
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": prompt}},
			},
		},
		"generationConfig": map[string]any{
			"imageConfig": map[string]any{
				"aspectRatio": aspectRatio,
				"imageSize":   "1K",
			},
		},
	}

	resp, err := g.generate(ctx, geminiImageModel, payload)
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return "data:image/png;base64," + part.InlineData.Data, nil
			}
		}
	}
	return "", errors.New("no image in generation response")
}

func (g *Gemini) generate(ctx context.Context, model string, payload map[string]any) (*geminiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal Gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, model)
	resp, err := g.open(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse Gemini response: %w", err)
	}
	return &parsed, nil
}
