package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/elonfeng/repradar/internal/store"
	"github.com/elonfeng/repradar/pkg/alert"
	"github.com/elonfeng/repradar/pkg/report"
)

// Scheduler periodically refreshes every tracked keyword, records score
// snapshots for the trend chart and raises alerts when a keyword's
// reputation deteriorates.
type Scheduler struct {
	store         *store.SQLiteStore
	tracker       *report.Tracker
	alertMgr      *alert.Manager
	interval      time.Duration
	minScore      int
	dropThreshold int
	seedKeywords  []string
}

// New creates a new scheduler. seedKeywords are refreshed even if nobody
// has tracked them through the API yet.
func New(
	s *store.SQLiteStore,
	tracker *report.Tracker,
	alertMgr *alert.Manager,
	interval time.Duration,
	minScore, dropThreshold int,
	seedKeywords []string,
) *Scheduler {
	if interval == 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		store:         s,
		tracker:       tracker,
		alertMgr:      alertMgr,
		interval:      interval,
		minScore:      minScore,
		dropThreshold: dropThreshold,
		seedKeywords:  seedKeywords,
	}
}

// Run starts the refresh loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	fmt.Fprintln(os.Stderr, "scheduler: initial refresh...")
	s.refreshAll(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (refresh every %s)\n", s.interval)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprintln(os.Stderr, "scheduler: refreshing...")
			s.refreshAll(ctx)
		}
	}
}

// refreshAll refreshes every keyword in turn. A failed keyword logs and
// moves on; its stored report stays as it was.
func (s *Scheduler) refreshAll(ctx context.Context) {
	keywords, err := s.keywords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  list keywords error: %v\n", err)
		return
	}

	for _, keyword := range keywords {
		previous, err := s.tracker.Report(ctx, keyword)
		if err != nil && !errors.Is(err, report.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "  %s load error: %v\n", keyword, err)
			continue
		}

		current, err := s.tracker.Refresh(ctx, keyword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s refresh error: %v\n", keyword, err)
			continue
		}

		if err := s.store.AddScoreSnapshot(ctx, keyword, current.Score, current.LastUpdated); err != nil {
			fmt.Fprintf(os.Stderr, "  %s snapshot error: %v\n", keyword, err)
		}

		fmt.Fprintf(os.Stderr, "  %s: %d results, score %d\n", keyword, len(current.Results), current.Score)
		s.maybeAlert(ctx, previous, current)
	}
}

// keywords returns tracked keywords merged with the configured seed list.
func (s *Scheduler) keywords(ctx context.Context) ([]string, error) {
	tracked, err := s.store.ListKeywords(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(tracked))
	for _, k := range tracked {
		seen[k] = true
	}
	for _, k := range s.seedKeywords {
		if !seen[k] {
			tracked = append(tracked, k)
			seen[k] = true
		}
	}
	return tracked, nil
}

func (s *Scheduler) maybeAlert(ctx context.Context, previous, current *report.KeywordReport) {
	if !s.alertMgr.HasNotifiers() {
		return
	}

	var reasons []string
	if previous != nil && s.dropThreshold > 0 && previous.Score-current.Score >= s.dropThreshold {
		reasons = append(reasons, fmt.Sprintf("score dropped %d points", previous.Score-current.Score))
	}
	if s.minScore > 0 && current.Score < s.minScore {
		reasons = append(reasons, fmt.Sprintf("score below threshold %d", s.minScore))
	}
	if negatives := newTopNegatives(previous, current); len(negatives) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d negative result(s) entered the top 10", len(negatives)))
	}
	if len(reasons) == 0 {
		return
	}

	oldScore := current.Score
	if previous != nil {
		oldScore = previous.Score
	}

	notification := &alert.Notification{
		Keyword:  current.Keyword,
		OldScore: oldScore,
		NewScore: current.Score,
		Reasons:  reasons,
		Items:    negativeTopTen(current),
	}

	if err := s.alertMgr.Broadcast(ctx, notification); err != nil {
		fmt.Fprintf(os.Stderr, "  %s alert error: %v\n", current.Keyword, err)
		return
	}
	fmt.Fprintf(os.Stderr, "  %s: alerted (score %d)\n", current.Keyword, current.Score)
}

// newTopNegatives returns current top-10 NEGATIVE items whose URL was not
// already a top-10 negative before the refresh.
func newTopNegatives(previous, current *report.KeywordReport) []report.ResultItem {
	known := make(map[string]bool)
	if previous != nil {
		for _, item := range previous.Results {
			if item.Rank <= 10 && item.Sentiment == report.SentimentNegative {
				known[item.URL] = true
			}
		}
	}

	var fresh []report.ResultItem
	for _, item := range current.Results {
		if item.Rank <= 10 && item.Sentiment == report.SentimentNegative && !known[item.URL] {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

func negativeTopTen(r *report.KeywordReport) []report.ResultItem {
	var items []report.ResultItem
	for _, item := range r.Results {
		if item.Rank <= 10 && item.Sentiment == report.SentimentNegative {
			items = append(items, item)
		}
	}
	return items
}
