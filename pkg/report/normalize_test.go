package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/repradar/pkg/serp"
)

func TestNormalize_Defaults(t *testing.T) {
	items := Normalize([]serp.RawResult{
		{Rank: 1, Title: "Profile", URL: "https://linkedin.com/in/someone", SerpFeature: "profile"},
	})
	require.Len(t, items, 1)

	item := items[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, item.Rank)
	assert.Equal(t, "linkedin.com", item.Domain)
	assert.Equal(t, "profile", item.SerpFeature)
	assert.Equal(t, SentimentNeutral, item.Sentiment)
	assert.False(t, item.HasControl)
	assert.Equal(t, []int{1}, item.RankHistory)
}

func TestNormalize_UniqueIDs(t *testing.T) {
	items := Normalize([]serp.RawResult{
		{Rank: 1, URL: "https://a.com"},
		{Rank: 2, URL: "https://b.com"},
	})
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestNormalize_MalformedURLKeptWithEmptyDomain(t *testing.T) {
	items := Normalize([]serp.RawResult{
		{Rank: 1, Title: "Bad", URL: "not a url"},
		{Rank: 2, Title: "Good", URL: "https://example.com/page"},
	})
	require.Len(t, items, 2, "a malformed URL must not fail the batch")

	assert.Equal(t, "", items[0].Domain)
	assert.Equal(t, "not a url", items[0].URL)
	assert.Equal(t, "example.com", items[1].Domain)
}

func TestNormalize_DropsNonPositiveRanks(t *testing.T) {
	items := Normalize([]serp.RawResult{
		{Rank: 0, URL: "https://zero.com"},
		{Rank: -3, URL: "https://negative.com"},
		{Rank: 2, URL: "https://kept.com"},
	})
	require.Len(t, items, 1)
	assert.Equal(t, "kept.com", items[0].Domain)
}

func TestNormalize_SortsByRank(t *testing.T) {
	items := Normalize([]serp.RawResult{
		{Rank: 3, URL: "https://c.com"},
		{Rank: 1, URL: "https://a.com"},
		{Rank: 2, URL: "https://b.com"},
	})
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].Rank, items[1].Rank, items[2].Rank})
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.example.com/page", "www.example.com"},
		{"http://blog.test.org/post/123", "blog.test.org"},
		{"https://example.com:8080/x", "example.com"},
		{"not a url", ""},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, domainOf(tc.url), "domain for %q", tc.url)
	}
}
