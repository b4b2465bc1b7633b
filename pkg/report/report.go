package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultHistoryCap bounds how many rank observations are kept per result.
const DefaultHistoryCap = 30

// Sentiment is the user-assigned label describing a result's impact.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// ParseSentiment converts user input into a Sentiment. Short forms
// (pos/neu/neg) are accepted for CLI convenience.
func ParseSentiment(s string) (Sentiment, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "POSITIVE", "POS":
		return SentimentPositive, nil
	case "NEUTRAL", "NEU":
		return SentimentNeutral, nil
	case "NEGATIVE", "NEG":
		return SentimentNegative, nil
	}
	return "", fmt.Errorf("unknown sentiment %q (want positive, neutral or negative)", s)
}

// ResultItem is one tracked search result for a keyword.
//
// ID is assigned once at first observation and preserved across refreshes;
// URL is the join key that carries annotations between fetches. RankHistory
// is most-recent-first: index 0 always equals the current Rank.
type ResultItem struct {
	ID              string    `json:"id" db:"id"`
	Rank            int       `json:"rank" db:"rank"`
	Title           string    `json:"title" db:"title"`
	URL             string    `json:"url" db:"url"`
	Domain          string    `json:"domain" db:"domain"`
	Snippet         string    `json:"snippet,omitempty" db:"snippet"`
	SerpFeature     string    `json:"serpFeature" db:"serp_feature"`
	Sentiment       Sentiment `json:"sentiment" db:"sentiment"`
	HasControl      bool      `json:"hasControl" db:"has_control"`
	RankHistory     []int     `json:"rankHistory" db:"-"`
	RankHistoryJSON string    `json:"-" db:"rank_history"`
}

// KeywordReport is the full tracked state for one keyword.
type KeywordReport struct {
	Keyword     string       `json:"keyword"`
	Results     []ResultItem `json:"results"`
	Score       int          `json:"score"`
	LastUpdated time.Time    `json:"last_updated"`
}

// ErrNotFound is returned by a Store when a keyword has never been tracked.
// Store implementations must not conflate it with an availability failure.
var ErrNotFound = errors.New("keyword not tracked")

// Store is the persistence boundary the tracker needs: a keyed mapping from
// keyword to its current annotated result set.
type Store interface {
	GetReport(ctx context.Context, keyword string) ([]ResultItem, time.Time, error)
	SaveReport(ctx context.Context, keyword string, items []ResultItem, updatedAt time.Time) error
}
