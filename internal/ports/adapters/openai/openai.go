// Package openai recognizes subtitle text through an OpenAI-compatible chat
// completions endpoint that accepts image inputs.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/subextract/internal/metrics"
)

const (
	DefaultAPIPath = "/v1/chat/completions"
	DefaultModel   = "qwen/qwen3-vl-8b"

	// MaxCallTimeout bounds a single request regardless of the configured timeout.
	MaxCallTimeout = 15 * time.Second
)

type Options struct {
	Endpoint     string
	APIPath      string
	APIKey       string
	Model        string
	Prompt       string
	SystemPrompt string
	Timeout      time.Duration
	Client       *http.Client
}

type Adapter struct {
	key          string
	model        string
	url          string
	endpoint     string
	prompt       string
	systemPrompt string
	timeout      time.Duration
	client       *http.Client
}

func New(o Options) *Adapter {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Timeout <= 0 || o.Timeout > MaxCallTimeout {
		o.Timeout = MaxCallTimeout
	}
	client := o.Client
	if client == nil {
		client = &http.Client{}
	}
	endpoint := normalizeBaseURL(o.Endpoint)
	return &Adapter{
		key:          o.APIKey,
		model:        o.Model,
		endpoint:     endpoint,
		url:          JoinURL(endpoint, o.APIPath),
		prompt:       o.Prompt,
		systemPrompt: strings.TrimSpace(o.SystemPrompt),
		timeout:      o.Timeout,
		client:       client,
	}
}

func (a *Adapter) Model() string    { return a.model }
func (a *Adapter) Endpoint() string { return a.endpoint }
func (a *Adapter) URL() string      { return a.url }

// Recognize sends img to the endpoint and returns the trimmed reply text.
// Callers treat any error as "no text" for this frame.
func (a *Adapter) Recognize(ctx context.Context, img image.Image) (string, error) {
	start := time.Now()
	text, err := a.recognize(ctx, img)
	metrics.RecognitionDuration.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.RecognitionCalls.WithLabelValues("error").Inc()
	case text == "":
		metrics.RecognitionCalls.WithLabelValues("empty").Inc()
	default:
		metrics.RecognitionCalls.WithLabelValues("text").Inc()
	}
	return text, err
}

func (a *Adapter) recognize(ctx context.Context, img image.Image) (string, error) {
	dataURL, err := EncodeDataURL(img)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(a.buildPayload(dataURL))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("recognizer timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("recognizer request: %s", redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return "", fmt.Errorf("recognizer status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("recognizer status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", nil
	}
	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (a *Adapter) buildPayload(dataURL string) map[string]any {
	messages := make([]map[string]any, 0, 2)
	if a.systemPrompt != "" {
		messages = append(messages, map[string]any{"role": "system", "content": a.systemPrompt})
	}
	messages = append(messages, map[string]any{
		"role": "user",
		"content": []map[string]any{
			{"type": "text", "text": a.prompt},
			{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
		},
	})
	return map[string]any{
		"model":       a.model,
		"messages":    messages,
		"temperature": 0,
	}
}

// EncodeDataURL renders img as a base64 PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		return b.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("recognizer: unexpected content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
