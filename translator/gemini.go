package translator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiModel          = "gemini-3-flash-preview"
	geminiMaxErrBody     = 2048
	geminiMaxRetries     = 5
)

// Gemini streams translations from the Generative Language API over SSE.
type Gemini struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewGemini(apiKey, baseURL string, httpClient *http.Client) *Gemini {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = geminiDefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Gemini{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		maxRetries: geminiMaxRetries,
	}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": req.Prompt}},
			},
		},
		"generationConfig": map[string]any{
			"temperature": req.Config.Temperature,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal Gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", g.baseURL, geminiModel)
	resp, err := g.open(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	out := make(chan Fragment)
	go g.readStream(ctx, resp, out)
	return out, nil
}

// open establishes the response, retrying transient failures with
// exponential backoff.
func (g *Gemini) open(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build Gemini request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request Gemini API: %w", err)
		} else if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return resp, nil
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, geminiMaxErrBody))
			resp.Body.Close()
			lastErr = fmt.Errorf("Gemini API status %d: %s", resp.StatusCode, geminiErrorMessage(respBody))
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return nil, lastErr
			}
			if retryAfter := parseRetryAfter(resp.Header.Get("Retry-After")); retryAfter > 0 {
				select {
				case <-time.After(retryAfter):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}

		if attempt == g.maxRetries {
			break
		}
		select {
		case <-time.After(backoffDelay(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (g *Gemini) readStream(ctx context.Context, resp *http.Response, out chan<- Fragment) {
	defer close(out)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		text, err := geminiChunkText([]byte(data))
		if err != nil {
			sendFragment(ctx, out, Fragment{Err: err})
			return
		}
		if text == "" {
			continue
		}
		if !sendFragment(ctx, out, Fragment{Text: text}) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		sendFragment(ctx, out, Fragment{Err: fmt.Errorf("read Gemini stream: %w", err)})
	}
}

func sendFragment(ctx context.Context, out chan<- Fragment, f Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func geminiChunkText(data []byte) (string, error) {
	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse Gemini stream chunk: %w", err)
	}

	var builder strings.Builder
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			builder.WriteString(part.Text)
		}
	}
	return builder.String(), nil
}

func geminiErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Error.Message) != "" {
		return parsed.Error.Message
	}

	snippet := strings.TrimSpace(string(body))
	if snippet == "" {
		return "empty error response"
	}
	return snippet
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := http.ParseTime(value); err == nil {
		if delta := time.Until(ts); delta > 0 {
			return delta
		}
	}
	return 0
}

func backoffDelay(attempt int) time.Duration {
	delay := time.Second * time.Duration(1<<attempt)
	jitter := time.Duration(rand.Intn(250)) * time.Millisecond
	if max := 30 * time.Second; delay+jitter > max {
		return max
	}
	return delay + jitter
}
