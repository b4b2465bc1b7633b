package report

import (
	"net/url"
	"sort"

	"github.com/google/uuid"

	"github.com/elonfeng/repradar/pkg/serp"
)

// Normalize converts raw provider results into canonical ResultItems with
// fresh IDs, derived domains and annotation defaults. Items with a
// non-positive rank are discarded (providers occasionally emit them for
// feature blocks); items with an unparseable URL are kept with an empty
// domain so annotations attached to them on earlier refreshes survive.
// Output is ordered by ascending rank.
func Normalize(raw []serp.RawResult) []ResultItem {
	items := make([]ResultItem, 0, len(raw))
	for _, r := range raw {
		if r.Rank < 1 {
			continue
		}
		items = append(items, ResultItem{
			ID:          uuid.NewString(),
			Rank:        r.Rank,
			Title:       r.Title,
			URL:         r.URL,
			Domain:      domainOf(r.URL),
			Snippet:     r.Snippet,
			SerpFeature: r.SerpFeature,
			Sentiment:   SentimentNeutral,
			RankHistory: []int{r.Rank},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Rank < items[j].Rank
	})
	return items
}

// domainOf extracts the hostname from a URL, or "" when it has none.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
