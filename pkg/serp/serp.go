package serp

import "context"

// RawResult is one entry of a fetched search results page, before
// normalization. SerpFeature is the provider's result-type tag (organic,
// news, profile, ...) and is passed through opaquely.
type RawResult struct {
	Rank        int    `json:"rank"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	SerpFeature string `json:"serpFeature"`
}

// Provider fetches the current results page for a keyword, ordered by
// ascending rank. Implementations do not retry; that is the caller's call.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, keyword string) ([]RawResult, error)
}
