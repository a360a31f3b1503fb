// Package openweather looks up a short weather advisory for a city via
// the OpenWeatherMap current-weather endpoint. The client never fails
// outward: any error degrades to the unavailable sentinel so the dialogue
// carries on without a seating suggestion.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openweathermap.org/data/2.5/weather"`
	Units   string        `envconfig:"UNITS" split_words:"true" default:"metric"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	apiKey     string
	units      string
	httpClient *http.Client
}

var _ contractx.WeatherAdvisory = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("openweather base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid openweather url: %w", err)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openweather api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	units := strings.TrimSpace(cfg.Units)
	if units == "" {
		units = "metric"
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		units:      units,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type forecastResponse struct {
	// cod is 200 as a number on success but a string on errors.
	Cod     json.RawMessage `json:"cod"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Lookup returns a one-line advisory like
// "Weather in Lisbon: Clear, 21.3°C." or the unavailable sentinel.
func (c *Client) Lookup(ctx context.Context, location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return contractx.AdvisoryUnavailable
	}

	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return c.degrade(location, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.degrade(location, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return c.degrade(location, err)
	}
	if resp.StatusCode != http.StatusOK {
		return c.degrade(location, fmt.Errorf("http status=%d", resp.StatusCode))
	}

	var parsed forecastResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return c.degrade(location, err)
	}
	if string(parsed.Cod) != "200" || len(parsed.Weather) == 0 {
		return c.degrade(location, fmt.Errorf("cod=%s", string(parsed.Cod)))
	}

	return fmt.Sprintf("Weather in %s: %s, %.1f°C.", location, parsed.Weather[0].Main, parsed.Main.Temp)
}

func (c *Client) degrade(location string, err error) string {
	log.Warn().Err(err).Str("location", location).Msg("weather lookup degraded")
	return contractx.AdvisoryUnavailable
}
