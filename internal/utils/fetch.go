package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
)

const userAgent = "ghorg"

// Fetcher retrieves and decodes a single JSON resource.
type Fetcher interface {
	GetJSON(ctx context.Context, url string) (any, error)
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, body)
}

// GetJSON performs one GET against url and returns the decoded body.
func GetJSON(ctx context.Context, client *http.Client, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return do(client, req)
}

// HTTPFetcher is the Fetcher used against the real API.
type HTTPFetcher struct {
	token  string
	client *http.Client
}

func NewHTTPFetcher(token string) *HTTPFetcher {
	return &HTTPFetcher{
		token: token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (f *HTTPFetcher) GetJSON(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", f.token))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	return do(f.client, req)
}

func do(client *http.Client, req *http.Request) (any, error) {
	if client == nil {
		client = http.DefaultClient
	}

	url := req.URL.String()
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"url":     url,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("GET")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return payload, nil
}
