package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elonfeng/repradar/pkg/serp"
)

// Tracker orchestrates a keyword's lifecycle: fetch, normalize, reconcile
// against stored history, score, persist. Keywords are independent; the
// tracker holds no per-keyword state between calls, so concurrent operations
// on different keywords are safe and concurrent operations on the same
// keyword resolve last-write-wins.
type Tracker struct {
	provider   serp.Provider
	store      Store
	scorer     Scorer
	historyCap int
}

// NewTracker creates a tracker. A non-positive historyCap falls back to
// DefaultHistoryCap.
func NewTracker(provider serp.Provider, store Store, scorer Scorer, historyCap int) *Tracker {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Tracker{
		provider:   provider,
		store:      store,
		scorer:     scorer,
		historyCap: historyCap,
	}
}

// Refresh fetches the current results page for keyword, reconciles it with
// the stored report and persists the outcome. A provider or store failure
// returns before anything is written, leaving prior state untouched.
func (t *Tracker) Refresh(ctx context.Context, keyword string) (*KeywordReport, error) {
	raw, err := t.provider.Fetch(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("fetch results for %q: %w", keyword, err)
	}

	fresh := Normalize(raw)

	previous, _, err := t.store.GetReport(ctx, keyword)
	if errors.Is(err, ErrNotFound) {
		previous = nil
	} else if err != nil {
		return nil, fmt.Errorf("load report for %q: %w", keyword, err)
	}

	merged := Reconcile(fresh, previous, t.historyCap)
	now := time.Now().UTC()

	if err := t.store.SaveReport(ctx, keyword, merged, now); err != nil {
		return nil, fmt.Errorf("save report for %q: %w", keyword, err)
	}

	return &KeywordReport{
		Keyword:     keyword,
		Results:     merged,
		Score:       t.scorer.Score(merged),
		LastUpdated: now,
	}, nil
}

// Report loads the stored result set for keyword and recomputes its score.
// The score is derived on every read, never stored, so it cannot go stale.
func (t *Tracker) Report(ctx context.Context, keyword string) (*KeywordReport, error) {
	items, updatedAt, err := t.store.GetReport(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return &KeywordReport{
		Keyword:     keyword,
		Results:     items,
		Score:       t.scorer.Score(items),
		LastUpdated: updatedAt,
	}, nil
}

// UpdateSentiment replaces the sentiment of the item with the given id and
// persists the updated report. An unknown id is a silent no-op: the UI only
// issues edits for ids it rendered, so nothing is saved and the current
// report is returned unchanged.
func (t *Tracker) UpdateSentiment(ctx context.Context, keyword, id string, sentiment Sentiment) (*KeywordReport, error) {
	return t.edit(ctx, keyword, id, func(item *ResultItem) {
		item.Sentiment = sentiment
	})
}

// ToggleControl flips the control flag of the item with the given id.
// Same no-op contract as UpdateSentiment for unknown ids.
func (t *Tracker) ToggleControl(ctx context.Context, keyword, id string) (*KeywordReport, error) {
	return t.edit(ctx, keyword, id, func(item *ResultItem) {
		item.HasControl = !item.HasControl
	})
}

func (t *Tracker) edit(ctx context.Context, keyword, id string, apply func(*ResultItem)) (*KeywordReport, error) {
	items, updatedAt, err := t.store.GetReport(ctx, keyword)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID == id {
			apply(&items[i])
			found = true
			break
		}
	}

	if found {
		updatedAt = time.Now().UTC()
		if err := t.store.SaveReport(ctx, keyword, items, updatedAt); err != nil {
			return nil, fmt.Errorf("save report for %q: %w", keyword, err)
		}
	}

	return &KeywordReport{
		Keyword:     keyword,
		Results:     items,
		Score:       t.scorer.Score(items),
		LastUpdated: updatedAt,
	}, nil
}
