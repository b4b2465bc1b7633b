package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/elonfeng/repradar/internal/config"
	"github.com/elonfeng/repradar/internal/scheduler"
	"github.com/elonfeng/repradar/internal/store"
	"github.com/elonfeng/repradar/pkg/alert"
	"github.com/elonfeng/repradar/pkg/report"
	"github.com/elonfeng/repradar/pkg/serp"
	"github.com/elonfeng/repradar/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildProvider(cfg *config.Config) (serp.Provider, error) {
	switch cfg.Provider.Name {
	case "", "dataforseo":
		return serp.NewDataForSEO(
			cfg.Provider.DataForSEO.Login,
			cfg.Provider.DataForSEO.Password,
			cfg.Provider.DataForSEO.LocationName,
			cfg.Provider.DataForSEO.LanguageCode,
			cfg.Provider.DataForSEO.Depth,
		), nil
	case "googlenews":
		return serp.NewGoogleNews(cfg.Provider.GoogleNews.Language, cfg.Provider.GoogleNews.Limit), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
}

func buildTracker(cfg *config.Config, db *store.SQLiteStore) (*report.Tracker, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	scorer := report.Scorer{
		Policy:     report.Policy(cfg.Scoring.Policy),
		Escalation: cfg.Scoring.Escalation,
	}
	return report.NewTracker(provider, db, scorer, cfg.Scoring.HistoryCap), nil
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

// open loads config, opens the store and builds the tracker. The returned
// cleanup closes the store.
func open() (*config.Config, *store.SQLiteStore, *report.Tracker, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	tracker, err := buildTracker(cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}

	return cfg, db, tracker, func() { db.Close() }, nil
}

func runTrack(keyword string) error {
	_, _, tracker, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := tracker.Refresh(context.Background(), keyword)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "tracked %q: %d results\n", keyword, len(rep.Results))
	return printReport(rep, false)
}

func runReport(keyword string, jsonOutput bool) error {
	_, _, tracker, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := tracker.Report(context.Background(), keyword)
	if err != nil {
		return err
	}
	return printReport(rep, jsonOutput)
}

func printReport(rep *report.KeywordReport, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Printf("keyword: %s\nscore:   %d/100\nupdated: %s\n\n",
		rep.Keyword, rep.Score, rep.LastUpdated.Format(time.RFC3339))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSENTIMENT\tCTRL\tDOMAIN\tTITLE\tID")
	for _, item := range rep.Results {
		ctrl := ""
		if item.HasControl {
			ctrl = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.Rank, item.Sentiment, ctrl, item.Domain, item.Title, item.ID)
	}
	return w.Flush()
}

func runKeywords() error {
	_, db, _, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	keywords, err := db.ListKeywords(context.Background())
	if err != nil {
		return err
	}

	if len(keywords) == 0 {
		fmt.Println("no tracked keywords (try: repradar track \"Your Name\")")
		return nil
	}
	for _, k := range keywords {
		fmt.Println(k)
	}
	return nil
}

func runHistory(keyword string, jsonOutput bool) error {
	_, db, _, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	snaps, err := db.GetScoreHistory(context.Background(), keyword, time.Time{})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		fmt.Printf("no score history for %q\n", keyword)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECKED\tSCORE")
	for _, snap := range snaps {
		fmt.Fprintf(w, "%s\t%d\n", snap.CheckedAt.Format(time.RFC3339), snap.Score)
	}
	return w.Flush()
}

func runSentiment(keyword, id, label string) error {
	sentiment, err := report.ParseSentiment(label)
	if err != nil {
		return err
	}

	_, _, tracker, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := tracker.UpdateSentiment(context.Background(), keyword, id, sentiment)
	if err != nil {
		return err
	}

	fmt.Printf("score: %d/100\n", rep.Score)
	return nil
}

func runControl(keyword, id string) error {
	_, _, tracker, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := tracker.ToggleControl(context.Background(), keyword, id)
	if err != nil {
		return err
	}

	fmt.Printf("score: %d/100\n", rep.Score)
	return nil
}

func runUntrack(keyword string) error {
	_, db, _, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := db.DeleteKeyword(context.Background(), keyword); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "untracked %q\n", keyword)
	return nil
}

func runServe(port int) error {
	cfg, db, tracker, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	if port == 0 {
		port = cfg.Server.Port
	}

	srv := server.New(tracker, db, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, db, tracker, cleanup, err := open()
	if err != nil {
		return err
	}
	defer cleanup()

	if port == 0 {
		port = cfg.Server.Port
	}

	alertMgr := buildAlertManager(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, tracker, alertMgr,
		cfg.Schedule.ParseRefreshInterval(),
		cfg.Alerts.MinScore,
		cfg.Alerts.DropThreshold,
		cfg.Keywords,
	)

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(tracker, db, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
