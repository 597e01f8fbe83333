package imgflip

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memeverse/internal/source"
)

const (
	SourceID       = "imgflip"
	SourceName     = "Imgflip"
	DefaultBaseURL = "https://api.imgflip.com"
)

// Config holds configuration for the Imgflip adapter.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// Adapter implements the TrendingSource interface for the public Imgflip API.
type Adapter struct {
	client   *resty.Client
	endpoint string
}

// getMemesResponse is the payload of GET /get_memes.
type getMemesResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	Data         struct {
		Memes []source.TrendingItem `json:"memes"`
	} `json:"data"`
}

// NewAdapter creates a new Imgflip adapter.
// Parameters:
//   - cfg: adapter configuration; nil uses the public endpoint and defaults.
//
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(cfg *Config) *Adapter {
	if cfg == nil {
		cfg = &Config{}
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(timeout)
	client.SetRetryCount(cfg.RetryCount)
	client.SetRetryWaitTime(500 * time.Millisecond)

	return &Adapter{
		client:   client,
		endpoint: baseURL + "/get_memes",
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return SourceName
}

// FetchTrending calls GET /get_memes.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//
// Returns:
//   - []source.TrendingItem: memes in API order.
//   - error: non-nil on transport failure, non-2xx status or success=false.
func (a *Adapter) FetchTrending(ctx context.Context) ([]source.TrendingItem, error) {
	var result getMemesResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call imgflip: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("imgflip returned status %d", resp.StatusCode())
	}
	if !result.Success {
		msg := result.ErrorMessage
		if msg == "" {
			msg = "success=false"
		}
		return nil, fmt.Errorf("imgflip request failed: %s", msg)
	}
	return result.Data.Memes, nil
}
