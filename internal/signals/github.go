package signals

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/signalvane/signalvane/schema"
)

// GitHubFetcher searches for recently pushed repositories ordered by stars.
type GitHubFetcher struct {
	client  *http.Client
	baseURL string
	query   string
	token   string
	limit   int
	now     func() time.Time
}

// NewGitHubFetcher creates a GitHub repository search fetcher.
func NewGitHubFetcher(client *http.Client, baseURL, query, token string, limit int) *GitHubFetcher {
	return &GitHubFetcher{client: client, baseURL: baseURL, query: query, token: token, limit: limit, now: time.Now}
}

// Source identifies the fetcher.
func (f *GitHubFetcher) Source() schema.SignalSource { return schema.GitHubSource }

type githubSearchResponse struct {
	Items []struct {
		FullName    string    `json:"full_name"`
		Stars       float64   `json:"stargazers_count"`
		Description string    `json:"description"`
		HTMLURL     string    `json:"html_url"`
		Language    string    `json:"language"`
		PushedAt    time.Time `json:"pushed_at"`
	} `json:"items"`
}

// Fetch returns the top repositories pushed within lookback.
func (f *GitHubFetcher) Fetch(ctx context.Context, lookback time.Duration) ([]schema.Signal, error) {
	since := f.now().Add(-lookback).Format("2006-01-02")
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s pushed:>%s", f.query, since))
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", fmt.Sprint(f.limit))

	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if f.token != "" {
		headers["Authorization"] = "token " + f.token
	}

	var resp githubSearchResponse
	if err := getJSON(ctx, f.client, f.baseURL+"/search/repositories?"+params.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	signals := make([]schema.Signal, 0, min(len(resp.Items), f.limit))
	for _, item := range head(resp.Items, f.limit) {
		signals = append(signals, schema.Signal{
			Source:      schema.GitHubSource,
			Name:        item.FullName,
			Score:       item.Stars,
			URL:         item.HTMLURL,
			Description: item.Description,
			Language:    item.Language,
			UpdatedAt:   timePtr(item.PushedAt),
		})
	}
	return signals, nil
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
