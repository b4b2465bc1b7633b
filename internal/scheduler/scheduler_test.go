package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/repradar/internal/store"
	"github.com/elonfeng/repradar/pkg/alert"
	"github.com/elonfeng/repradar/pkg/report"
	"github.com/elonfeng/repradar/pkg/serp"
)

type fakeProvider struct {
	results []serp.RawResult
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(ctx context.Context, keyword string) ([]serp.RawResult, error) {
	return f.results, nil
}

type recordingNotifier struct {
	got []*alert.Notification
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Send(ctx context.Context, n *alert.Notification) error {
	r.got = append(r.got, n)
	return nil
}

func newFixture(t *testing.T, provider *fakeProvider, minScore, dropThreshold int) (*Scheduler, *store.SQLiteStore, *report.Tracker, *recordingNotifier) {
	t.Helper()

	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tracker := report.NewTracker(provider, db, report.Scorer{Policy: report.PolicyWeighted}, 0)
	notifier := &recordingNotifier{}
	mgr := alert.NewManager([]alert.Notifier{notifier})

	sched := New(db, tracker, mgr, time.Hour, minScore, dropThreshold, []string{"acme"})
	return sched, db, tracker, notifier
}

func TestRefreshAll_RecordsSnapshots(t *testing.T) {
	provider := &fakeProvider{results: []serp.RawResult{
		{Rank: 1, URL: "https://a.com"},
		{Rank: 2, URL: "https://b.com"},
	}}
	sched, db, _, _ := newFixture(t, provider, 0, 0)
	ctx := context.Background()

	sched.refreshAll(ctx)

	items, _, err := db.GetReport(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, items, 2, "seed keyword refreshed without anyone tracking it first")

	snaps, err := db.GetScoreHistory(ctx, "acme", time.Time{})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 50, snaps[0].Score)

	sched.refreshAll(ctx)
	snaps, err = db.GetScoreHistory(ctx, "acme", time.Time{})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestRefreshAll_AlertsOnScoreDrop(t *testing.T) {
	provider := &fakeProvider{results: []serp.RawResult{{Rank: 1, URL: "https://a.com"}}}
	sched, _, tracker, notifier := newFixture(t, provider, 0, 10)
	ctx := context.Background()

	sched.refreshAll(ctx)

	// The user marks the only result positive; score jumps to 90.
	rep, err := tracker.Report(ctx, "acme")
	require.NoError(t, err)
	_, err = tracker.UpdateSentiment(ctx, "acme", rep.Results[0].ID, report.SentimentPositive)
	require.NoError(t, err)

	// Next fetch no longer carries the positive result at all.
	provider.results = []serp.RawResult{{Rank: 1, URL: "https://other.com"}}
	sched.refreshAll(ctx)

	require.Len(t, notifier.got, 1)
	n := notifier.got[0]
	assert.Equal(t, "acme", n.Keyword)
	assert.Equal(t, 90, n.OldScore)
	assert.Equal(t, 50, n.NewScore)
	assert.Contains(t, n.Reasons[0], "dropped")
}

func TestRefreshAll_AlertsWhenNegativeEntersTopTen(t *testing.T) {
	provider := &fakeProvider{results: []serp.RawResult{{Rank: 12, URL: "https://bad.com"}}}
	sched, _, tracker, notifier := newFixture(t, provider, 0, 0)
	ctx := context.Background()

	sched.refreshAll(ctx)

	rep, err := tracker.Report(ctx, "acme")
	require.NoError(t, err)
	_, err = tracker.UpdateSentiment(ctx, "acme", rep.Results[0].ID, report.SentimentNegative)
	require.NoError(t, err)

	// Same URL climbs into the top 10.
	provider.results = []serp.RawResult{{Rank: 2, URL: "https://bad.com"}}
	sched.refreshAll(ctx)

	require.Len(t, notifier.got, 1)
	n := notifier.got[0]
	assert.Contains(t, n.Reasons[0], "top 10")
	require.Len(t, n.Items, 1)
	assert.Equal(t, "https://bad.com", n.Items[0].URL)
}

func TestRefreshAll_NoAlertWhenNothingChanged(t *testing.T) {
	provider := &fakeProvider{results: []serp.RawResult{{Rank: 1, URL: "https://a.com"}}}
	sched, _, _, notifier := newFixture(t, provider, 0, 10)
	ctx := context.Background()

	sched.refreshAll(ctx)
	sched.refreshAll(ctx)

	assert.Empty(t, notifier.got)
}
