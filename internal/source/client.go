package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/budgetviz/internal/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 8 << 20 // 8 MB
	userAgent      = "budgetviz/1.0"
)

// Client fetches raw dataset payloads from http(s) URLs or local paths.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a client with the given per-request timeout.
// A non-positive timeout uses the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{},
		timeout: timeout,
	}
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// IsRemote reports whether loc is an http(s) URL.
func IsRemote(loc string) bool {
	lower := strings.ToLower(strings.TrimSpace(loc))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch returns the raw bytes at loc.
func (c *Client) Fetch(ctx context.Context, loc string) ([]byte, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil, fmt.Errorf("%w: empty location", ErrNotFound)
	}
	if IsRemote(loc) {
		return c.get(ctx, loc)
	}
	return readLocal(loc)
}

// FetchDataset fetches and decodes the dataset for topic.
func (c *Client) FetchDataset(ctx context.Context, topic model.View, loc string) (model.Dataset, error) {
	data, err := c.Fetch(ctx, loc)
	if err != nil {
		return model.Dataset{}, err
	}
	return Decode(topic, loc, DetectFormat(loc, data), data)
}

func readLocal(loc string) ([]byte, error) {
	p := loc
	if strings.HasPrefix(strings.ToLower(loc), "file://") {
		u, err := url.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("source: bad file url %q: %w", loc, err)
		}
		p = u.Path
	}

	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("source: stat %s: %w", p, err)
	}
	if info.Size() > maxBodySize {
		return nil, fmt.Errorf("source: %s exceeds %d bytes", p, maxBodySize)
	}

	//nolint:gosec // dataset path is configured by the local user
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("source: reading %s: %w", p, err)
	}
	return data, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("source: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/csv;q=0.9, */*;q=0.5")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, u)
	case http.StatusNotFound, http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source: unexpected status %d from %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("source: reading response: %w", err)
	}
	return body, nil
}
