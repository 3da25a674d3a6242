// Package signals fetches raw ecosystem signals from upstream sources.
package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
)

// userAgent identifies signalvane to upstream APIs.
const userAgent = "SignalVane/1.0"

// NewFetchers returns every production fetcher configured by cfg.
func NewFetchers(cfg *contract.Config) []contract.SignalFetcher {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	return []contract.SignalFetcher{
		NewGitHubFetcher(client, cfg.GitHubBaseURL, cfg.GitHubQuery, cfg.GitHubToken, cfg.GitHubLimit),
		NewRedditFetcher(client, cfg.RedditBaseURL, cfg.Subreddits),
		NewOnchainFetcher(),
		NewIntelFetcher(cfg.IntelPath()),
	}
}

// getJSON issues a GET request and decodes a 2xx JSON response into v.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %s: %s", req.URL.Path, resp.Status, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
