// Package ollama calls a local Ollama server's non-streaming generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	// DefaultBaseURL is the address of a locally running Ollama daemon.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is the generator model used for consensus queries.
	DefaultModel = "phi4"
)

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateRequest is the request body for POST /api/generate.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse is the non-streaming response from POST /api/generate.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default daemon address.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

type httpClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewClient creates an Ollama client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(GenerateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", eris.Wrap(err, "ollama: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "ollama: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "ollama: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "ollama: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var out GenerateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", eris.Wrap(err, "ollama: unmarshal response")
	}
	return strings.TrimSpace(out.Response), nil
}
