package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Completer is the opaque remote procedure behind summarization: prompt in,
// markdown out. Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterConfig configures the [HTTPCompleter].
//
// CompleterConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CompleterConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// HTTPCompleter calls a JSON-over-HTTP completion endpoint with a bearer API
// key.
//
// HTTPCompleter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPCompleter struct {
	cfg    CompleterConfig
	client *http.Client
}

// NewHTTPCompleter validates cfg and returns the completer. Timeout <= 0
// falls back to 60 seconds, sized for long-document completions.
func NewHTTPCompleter(cfg CompleterConfig) (*HTTPCompleter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("completer endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPCompleter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type completionRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Complete posts the prompt and returns the markdown body. Every transport
// or status failure maps to [ErrCompleterUnavailable]; the caller has no
// retry obligation.
func (c *HTTPCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Model: c.cfg.Model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompleterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the operator log, never for users.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("%w: status %d: %s", ErrCompleterUnavailable, resp.StatusCode, snippet)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompleterUnavailable, err)
	}
	if decoded.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrCompleterUnavailable)
	}

	return decoded.Content, nil
}
