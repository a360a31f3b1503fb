// Package bookings is the HTTP client for the booking backend. It is the
// persister side of the commit: one POST per call, no retries here — the
// dialogue policy owns retry bookkeeping.
package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contractx.BookingPersister = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("bookings base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid bookings url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type createResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// Create persists one completed draft and returns the record id. Any
// non-success outcome wraps ErrPersistence.
func (c *Client) Create(ctx context.Context, draft statex.BookingDraft) (string, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("%w: marshal draft: %v", contractx.ErrPersistence, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", contractx.ErrPersistence, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrPersistence, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", contractx.ErrPersistence, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: http status=%d", contractx.ErrPersistence, resp.StatusCode)
	}

	var parsed createResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", contractx.ErrPersistence, err)
	}
	if !parsed.Success || strings.TrimSpace(parsed.ID) == "" {
		return "", fmt.Errorf("%w: backend reported failure", contractx.ErrPersistence)
	}
	return parsed.ID, nil
}
