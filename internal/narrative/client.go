// Package narrative produces room descriptions through an Ollama-compatible
// text-generation service, falling back to templates when it is unavailable.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/logging"
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// ClientConfig configures the text-generation endpoint.
type ClientConfig struct {
	Endpoint       string
	CompletionPath string
	Model          string
	Options        map[string]any
	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a transient failure.
	MaxRetries    uint
	RetryInterval time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client talks to an Ollama-style completion endpoint.
type Client struct {
	cfg ClientConfig
	url string
	log *zap.Logger
}

// NewClient builds a client. Missing fields take Ollama defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = "http://127.0.0.1:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 250 * time.Millisecond
	}
	path := strings.TrimSpace(cfg.CompletionPath)
	if path == "" {
		path = "/api/generate"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &Client{
		cfg: cfg,
		url: strings.TrimRight(cfg.Endpoint, "/") + path,
		log: logging.OrNop(cfg.Logger),
	}
}

// ClientError is a failed or unusable completion response. Status is zero
// when the request never produced an HTTP response.
type ClientError struct {
	Status  int
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("text generation status %d: %s", e.Status, e.Message)
	}
	return "text generation: " + e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// transient reports whether retrying may help.
func (e *ClientError) transient() bool {
	return (e.Status == 0 && e.Err != nil) || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Generate sends prompt, prefixed by the system prompt when present, and
// returns the trimmed completion text.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	merged := strings.TrimSpace(prompt)
	if s := strings.TrimSpace(system); s != "" {
		merged = s + "\n\n" + merged
	}

	payload := map[string]any{
		"model":  c.cfg.Model,
		"prompt": merged,
		"stream": false,
	}
	maps.Copy(payload, c.cfg.Options)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryInterval

	return backoff.Retry(ctx, func() (string, error) {
		text, err := c.post(ctx, body)
		if err == nil {
			return text, nil
		}
		var cerr *ClientError
		if errors.As(err, &cerr) && cerr.transient() {
			c.log.Debug("retrying text generation", zap.Error(err))
			return "", err
		}
		return "", backoff.Permanent(err)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
	)
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", &ClientError{Message: "request failed", Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", &ClientError{Status: res.StatusCode, Message: "read response", Err: err}
	}
	if res.StatusCode >= 400 {
		return "", &ClientError{Status: res.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return parseCompletion(raw)
}

type completion struct {
	Error    string  `json:"error"`
	Response *string `json:"response"`
	Content  *string `json:"content"`
	Choices  []struct {
		Text    string `json:"text"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// parseCompletion accepts native Ollama, OpenAI-style and llama.cpp
// response shapes.
func parseCompletion(raw []byte) (string, error) {
	var payload completion
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", &ClientError{Message: "malformed response", Err: err}
	}
	if payload.Error != "" {
		return "", &ClientError{Message: payload.Error}
	}

	var text string
	switch {
	case payload.Response != nil:
		text = *payload.Response
	case len(payload.Choices) > 0:
		text = payload.Choices[0].Text
		if text == "" {
			text = payload.Choices[0].Message.Content
		}
	case payload.Content != nil:
		text = *payload.Content
	}
	return strings.TrimSpace(text), nil
}
