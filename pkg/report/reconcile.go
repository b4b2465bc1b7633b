package report

// Reconcile merges a freshly fetched, normalized result list with the
// previously stored list for the same keyword and returns the new
// authoritative list.
//
// Matching is by URL. A matched item keeps its previous ID, Sentiment and
// HasControl, takes content fields (title, domain, feature) from the fresh
// fetch, and gets the new rank prepended to its history, truncated to
// historyCap. Unmatched fresh items keep their normalizer defaults. Items
// present before but absent from the fresh fetch are dropped; output order
// follows the fresh fetch. Should the previous list contain duplicate URLs,
// the last occurrence wins when building the lookup.
func Reconcile(fresh, previous []ResultItem, historyCap int) []ResultItem {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}

	prev := make(map[string]*ResultItem, len(previous))
	for i := range previous {
		prev[previous[i].URL] = &previous[i]
	}

	out := make([]ResultItem, 0, len(fresh))
	for _, item := range fresh {
		if old, ok := prev[item.URL]; ok {
			item.ID = old.ID
			item.Sentiment = old.Sentiment
			item.HasControl = old.HasControl

			hist := make([]int, 0, len(old.RankHistory)+1)
			hist = append(hist, item.Rank)
			hist = append(hist, old.RankHistory...)
			if len(hist) > historyCap {
				hist = hist[:historyCap]
			}
			item.RankHistory = hist
		}
		out = append(out, item)
	}
	return out
}
