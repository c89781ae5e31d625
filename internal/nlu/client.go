// Package nlu calls the external extraction service that turns an utterance
// into intents and entities.
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vslim/internal/core"
	"vslim/internal/log"
)

var (
	ErrParseFailed   = errors.New("utterance parsing failed")
	ErrParseTimeout  = errors.New("utterance parsing timed out")
	ErrNotConfigured = errors.New("LLM parse URL is not configured")
)

// Parser extracts the structured content of an utterance.
type Parser interface {
	Parse(ctx context.Context, utterance string) (core.Utterance, error)
}

// Config holds client settings.
type Config struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	// BaseBackoff is doubled after each failed attempt.
	BaseBackoff time.Duration
}

// Client posts utterances to the extraction service. Transport errors and
// 5xx answers are retried with exponential backoff; 4xx answers are not.
// Timeout bounds the whole call, retries included.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger.WithComponent(log.ComponentNLU),
	}
}

type parseRequest struct {
	Utterance string `json:"utterance"`
}

type parseResponse struct {
	Intents    []core.Intent `json:"intents"`
	Entities   []core.Entity `json:"entities"`
	Confidence *float64      `json:"confidence"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d %s", e.code, e.body)
}

func (c *Client) Parse(ctx context.Context, utterance string) (core.Utterance, error) {
	if c.cfg.URL == "" {
		return core.Utterance{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(parseRequest{Utterance: utterance})
	if err != nil {
		return core.Utterance{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return core.Utterance{}, ErrParseTimeout
			}
		}

		parsed, err := c.post(ctx, body)
		if err == nil {
			c.logger.DebugContext(ctx, "Utterance parsed",
				"intents", len(parsed.Intents),
				"entities", len(parsed.Entities),
				"confidence", parsed.Confidence,
				"attempt", attempt+1)
			return parsed, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return core.Utterance{}, ErrParseTimeout
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && se.code < http.StatusInternalServerError {
			break
		}
		c.logger.WarnContext(ctx, "Parse attempt failed", "attempt", attempt+1, "error", err)
	}

	return core.Utterance{}, fmt.Errorf("%w: %v", ErrParseFailed, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (core.Utterance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return core.Utterance{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Utterance{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return core.Utterance{}, &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(text))}
	}

	var out parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.Utterance{}, fmt.Errorf("decode: %w", err)
	}
	return out.utterance(), nil
}

// utterance normalizes the wire form. A missing confidence counts as fully
// confident so that it never triggers the low-confidence fallback.
func (r parseResponse) utterance() core.Utterance {
	u := core.Utterance{
		Intents:    r.Intents,
		Entities:   r.Entities,
		Confidence: 1,
	}
	if r.Confidence != nil {
		u.Confidence = *r.Confidence
	}
	return u
}
