// Package ollama implements suggest.Extractor against a local Ollama
// server's /api/generate endpoint.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rsonderegger/dokusort/internal/entity"
	"github.com/rsonderegger/dokusort/internal/suggest"
)

// ErrDecodeFailed means the model answered but not with usable JSON.
var ErrDecodeFailed = errors.New("ollama response could not be decoded")

type Config struct {
	BaseURL  string
	Model    string
	DocTypes []string // constrains dokumenttyp in validation when set
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ollama base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("ollama model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}, nil
}

// generateResponse is the non-streaming /api/generate answer; the model's
// text sits in "response" and carries our JSON.
type generateResponse struct {
	Response string `json:"response"`
}

func (c *Client) Suggest(ctx context.Context, text string) (entity.Suggestion, error) {
	body := map[string]any{
		"model":  c.cfg.Model,
		"prompt": suggest.BuildPrompt(text, c.cfg.DocTypes),
		"stream": false,
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/generate"
	raw, status, err := suggest.SendJSON(ctx, c.http, url, body, nil, c.logger)
	if err != nil {
		return entity.Suggestion{}, fmt.Errorf("ollama request failed (status %d): %w", status, err)
	}

	var gen generateResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return entity.Suggestion{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	cleaned := suggest.StripCodeFences(gen.Response)
	sanitized, dropped, err := suggest.SanitizeResponseJSON([]byte(cleaned))
	if err != nil {
		return entity.Suggestion{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if len(dropped) > 0 {
		c.logger.Debug("ollama.suggest.dropped_fields", "model", c.cfg.Model, "fields", dropped)
	}

	sug, err := suggest.DecodeSuggestion(sanitized, c.cfg.DocTypes)
	if err != nil {
		return entity.Suggestion{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return sug, nil
}
