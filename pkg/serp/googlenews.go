package serp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
)

const googleNewsBaseURL = "https://news.google.com/rss/search"

// GoogleNews fetches news coverage for a keyword from the Google News RSS
// search feed. It needs no credentials, which makes it a useful provider
// when no DataForSEO account is available; rank is the feed position.
type GoogleNews struct {
	client   *http.Client
	parser   *gofeed.Parser
	baseURL  string
	language string
	limit    int
}

// NewGoogleNews creates a Google News provider. Language defaults to "en",
// limit to 50.
func NewGoogleNews(language string, limit int) *GoogleNews {
	if language == "" {
		language = "en"
	}
	if limit <= 0 {
		limit = 50
	}
	return &GoogleNews{
		client:   &http.Client{Timeout: 30 * time.Second},
		parser:   gofeed.NewParser(),
		baseURL:  googleNewsBaseURL,
		language: language,
		limit:    limit,
	}
}

func (g *GoogleNews) Name() string { return "googlenews" }

func (g *GoogleNews) Fetch(ctx context.Context, keyword string) ([]RawResult, error) {
	feedURL := fmt.Sprintf("%s?q=%s&hl=%s", g.baseURL, url.QueryEscape(keyword), g.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create news request: %w", err)
	}
	req.Header.Set("User-Agent", "repradar/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed for %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news feed status %d", resp.StatusCode)
	}

	feed, err := g.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse news feed for %q: %w", keyword, err)
	}

	items := feed.Items
	if len(items) > g.limit {
		items = items[:g.limit]
	}

	results := make([]RawResult, 0, len(items))
	for i, item := range items {
		results = append(results, RawResult{
			Rank:        i + 1,
			Title:       item.Title,
			URL:         item.Link,
			Snippet:     item.Description,
			SerpFeature: "news",
		})
	}
	return results, nil
}
