// Package openai implements the completion client against an OpenAI-compatible
// chat completions API, covering both text-only generation and multimodal
// (file + text) transcription calls.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lettersmith/ai-cover-letter/internal/adapter/observability"
	"github.com/lettersmith/ai-cover-letter/internal/config"
	"github.com/lettersmith/ai-cover-letter/internal/domain"
)

// Client implements domain.CompletionClient. Each call is single-shot: a
// non-success status is surfaced immediately as an UpstreamStatusError and is
// never retried here; the caller decides whether the request fails.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a client with the injected credential and a bounded timeout.
func New(cfg config.Config) *Client {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: timeout}}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a text-only chat completion and returns the first message's
// content. An empty-choices response yields an empty string, not an error;
// the post-processor substitutes the user-visible fallback text.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	body := map[string]any{
		"model":             c.cfg.ChatModel,
		"temperature":       req.Params.Temperature,
		"max_tokens":        req.Params.MaxTokens,
		"presence_penalty":  req.Params.PresencePenalty,
		"frequency_penalty": req.Params.FrequencyPenalty,
		"messages": []map[string]string{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.UserPrompt},
		},
	}
	out, err := c.post(ctx, "chat", body)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		slog.Warn("completion endpoint returned no choices",
			slog.String("provider", "openai"),
			slog.String("op", "chat"),
			slog.String("model", c.cfg.ChatModel))
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// CompleteWithFile sends a multimodal completion embedding the file as a
// base64 data URL alongside the instruction prompt.
func (c *Client) CompleteWithFile(ctx context.Context, req domain.FileCompletionRequest) (string, error) {
	dataURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(req.FileData)
	body := map[string]any{
		"model":       c.cfg.VisionModel,
		"temperature": 0.1,
		"max_tokens":  req.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "file",
						"file": map[string]string{
							"filename":  req.FileName,
							"file_data": dataURL,
						},
					},
					{"type": "text", "text": req.Prompt},
				},
			},
		},
	}
	out, err := c.post(ctx, "extract", body)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// Ping probes the models endpoint for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if c.cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.OpenAIBaseURL+"/models", nil)
	if err != nil {
		return err
	}
	r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	resp, err := c.hc.Do(r)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamStatusError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) post(ctx context.Context, op string, body map[string]any) (*chatResponse, error) {
	if c.cfg.OpenAIAPIKey == "" {
		slog.Error("completion endpoint credential missing", slog.String("provider", "openai"))
		return nil, fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrInternal, err)
	}

	start := time.Now()
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	r.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(r)
	observability.AIRequestsTotal.WithLabelValues("openai", op).Inc()
	observability.AIRequestDuration.WithLabelValues("openai", op).Observe(time.Since(start).Seconds())
	if err != nil {
		slog.Error("completion endpoint unreachable",
			slog.String("provider", "openai"),
			slog.String("op", op),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(bodyBytes)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		slog.Error("completion endpoint non-2xx",
			slog.String("provider", "openai"),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("endpoint", c.cfg.OpenAIBaseURL+"/chat/completions"),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", snippet))
		return nil, &domain.UpstreamStatusError{Status: resp.StatusCode}
	}

	var out chatResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		slog.Error("completion endpoint decode error",
			slog.String("provider", "openai"),
			slog.String("op", op),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return &out, nil
}
