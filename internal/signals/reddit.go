package signals

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// Reddit listing and keyword settings.
const (
	redditHotLimit     = 100
	redditNewLimit     = redditHotLimit / 2
	redditPopularScore = 50
	redditTopPosts     = 10
	keywordCandidates  = 20
	keywordMinCount    = 3
	keywordTop         = 15
)

// keywordRe matches capitalized words of at least four letters.
var keywordRe = regexp.MustCompile(`\b[A-Z][A-Za-z]{3,}\b`)

// keywordStopWords are frequent capitalized words that never name a narrative.
var keywordStopWords = map[string]struct{}{
	"Reddit":   {},
	"Post":     {},
	"Question": {},
	"Help":     {},
	"Update":   {},
	"News":     {},
}

// RedditFetcher reads public subreddit listings and extracts trending keywords and posts.
type RedditFetcher struct {
	client     *http.Client
	baseURL    string
	subreddits []string
	now        func() time.Time
}

// NewRedditFetcher creates a fetcher for the given subreddits.
func NewRedditFetcher(client *http.Client, baseURL string, subreddits []string) *RedditFetcher {
	return &RedditFetcher{client: client, baseURL: baseURL, subreddits: subreddits, now: time.Now}
}

// Source identifies the fetcher.
func (f *RedditFetcher) Source() schema.SignalSource { return schema.RedditSource }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	subreddit  string
}

// Fetch scans hot and new posts of every subreddit created within lookback.
// A failing subreddit is skipped; the fetch only fails when all of them do.
func (f *RedditFetcher) Fetch(ctx context.Context, lookback time.Duration) ([]schema.Signal, error) {
	cutoff := f.now().Add(-lookback)

	var (
		posts  []redditPost
		seen   = map[string]struct{}{}
		failed []error
	)
	for _, sub := range f.subreddits {
		subPosts, err := f.fetchSubreddit(ctx, sub)
		if err != nil {
			contract.LogWarn("Skipping r/"+sub, err)
			failed = append(failed, err)
			continue
		}
		for _, p := range subPosts {
			if time.Unix(int64(p.CreatedUTC), 0).Before(cutoff) {
				continue
			}
			if _, dup := seen[p.Permalink]; dup && p.Permalink != "" {
				continue
			}
			seen[p.Permalink] = struct{}{}
			posts = append(posts, p)
		}
	}
	if len(f.subreddits) > 0 && len(failed) == len(f.subreddits) {
		return nil, fmt.Errorf("all subreddits failed: %w", errors.Join(failed...))
	}

	signals := []schema.Signal{{
		Source:      schema.RedditSource,
		Name:        "posts",
		Score:       float64(len(posts)),
		Description: fmt.Sprintf("%d relevant discussions", len(posts)),
		Metadata:    map[string]string{"kind": "summary", "subreddits": strings.Join(f.subreddits, ",")},
	}}
	for _, kw := range topKeywords(posts) {
		signals = append(signals, schema.Signal{
			Source:   schema.RedditSource,
			Name:     kw.word,
			Score:    float64(kw.count),
			Metadata: map[string]string{"kind": "keyword"},
		})
	}
	for _, p := range popularPosts(posts) {
		created := time.Unix(int64(p.CreatedUTC), 0).UTC()
		signals = append(signals, schema.Signal{
			Source:    schema.RedditSource,
			Name:      p.Title,
			Score:     p.Score,
			URL:       "https://reddit.com" + p.Permalink,
			UpdatedAt: &created,
			Metadata:  map[string]string{"kind": "post", "subreddit": p.subreddit},
		})
	}
	return signals, nil
}

func (f *RedditFetcher) fetchSubreddit(ctx context.Context, sub string) ([]redditPost, error) {
	var posts []redditPost
	for _, listing := range []struct {
		name  string
		limit int
	}{{"hot", redditHotLimit}, {"new", redditNewLimit}} {
		endpoint := fmt.Sprintf("%s/r/%s/%s.json?limit=%d", f.baseURL, url.PathEscape(sub), listing.name, listing.limit)
		var resp redditListing
		if err := getJSON(ctx, f.client, endpoint, nil, &resp); err != nil {
			return nil, err
		}
		for _, child := range resp.Data.Children {
			p := child.Data
			p.subreddit = sub
			posts = append(posts, p)
		}
	}
	return posts, nil
}

type keywordCount struct {
	word  string
	count int
}

// topKeywords counts capitalized title words, keeps the most common candidates,
// then drops stop words and rare words.
func topKeywords(posts []redditPost) []keywordCount {
	counts := map[string]int{}
	var order []string
	for _, p := range posts {
		for _, w := range keywordRe.FindAllString(p.Title, -1) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	ranked := make([]keywordCount, 0, len(order))
	for _, w := range order {
		ranked = append(ranked, keywordCount{word: w, count: counts[w]})
	}
	// Stable sort keeps first-seen order between equal counts
	slices.SortStableFunc(ranked, func(a, b keywordCount) int { return cmp.Compare(b.count, a.count) })

	var top []keywordCount
	for _, kw := range head(ranked, keywordCandidates) {
		if _, stop := keywordStopWords[kw.word]; stop || kw.count < keywordMinCount {
			continue
		}
		top = append(top, kw)
	}
	return head(top, keywordTop)
}

// popularPosts returns the highest scored posts above the popularity threshold.
func popularPosts(posts []redditPost) []redditPost {
	var popular []redditPost
	for _, p := range posts {
		if p.Score > redditPopularScore {
			popular = append(popular, p)
		}
	}
	slices.SortStableFunc(popular, func(a, b redditPost) int { return cmp.Compare(b.Score, a.Score) })
	return head(popular, redditTopPosts)
}
