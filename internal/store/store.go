package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/repradar/pkg/report"
)

// ScoreSnapshot records a point-in-time reputation score for a keyword.
type ScoreSnapshot struct {
	ID        int64     `db:"id" json:"id"`
	Keyword   string    `db:"keyword" json:"keyword"`
	Score     int       `db:"score" json:"score"`
	CheckedAt time.Time `db:"checked_at" json:"checked_at"`
}

// SQLiteStore persists keyword reports in SQLite. It satisfies report.Store.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetReport returns the stored result set and last-updated time for a
// keyword. A keyword that was never tracked yields report.ErrNotFound;
// anything else that goes wrong is a genuine store failure.
func (s *SQLiteStore) GetReport(ctx context.Context, keyword string) ([]report.ResultItem, time.Time, error) {
	var updatedAt time.Time
	err := s.db.GetContext(ctx, &updatedAt,
		"SELECT last_updated FROM keywords WHERE term = ?", keyword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("keyword %q: %w", keyword, report.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get keyword %q: %w", keyword, err)
	}

	var items []report.ResultItem
	err = s.db.SelectContext(ctx, &items, `
		SELECT id, rank, title, url, domain, snippet, serp_feature, sentiment, has_control, rank_history
		FROM results WHERE keyword = ? ORDER BY position
	`, keyword)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get results for %q: %w", keyword, err)
	}

	for i := range items {
		json.Unmarshal([]byte(items[i].RankHistoryJSON), &items[i].RankHistory)
	}
	return items, updatedAt, nil
}

// SaveReport replaces the full result set for a keyword in one transaction.
// The whole new state is written or nothing is; there is no field-level merge.
func (s *SQLiteStore) SaveReport(ctx context.Context, keyword string, items []report.ResultItem, updatedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save for %q: %w", keyword, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO keywords (term, last_updated) VALUES (?, ?)
		ON CONFLICT(term) DO UPDATE SET last_updated = excluded.last_updated
	`, keyword, updatedAt)
	if err != nil {
		return fmt.Errorf("upsert keyword %q: %w", keyword, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM results WHERE keyword = ?", keyword); err != nil {
		return fmt.Errorf("clear results for %q: %w", keyword, err)
	}

	for i, item := range items {
		historyJSON, _ := json.Marshal(item.RankHistory)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO results (keyword, position, id, rank, title, url, domain, snippet, serp_feature, sentiment, has_control, rank_history)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, keyword, i, item.ID, item.Rank, item.Title, item.URL, item.Domain,
			item.Snippet, item.SerpFeature, item.Sentiment, item.HasControl, string(historyJSON))
		if err != nil {
			return fmt.Errorf("insert result %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save for %q: %w", keyword, err)
	}
	return nil
}

// ListKeywords returns all tracked keywords in alphabetical order.
func (s *SQLiteStore) ListKeywords(ctx context.Context) ([]string, error) {
	var keywords []string
	if err := s.db.SelectContext(ctx, &keywords, "SELECT term FROM keywords ORDER BY term"); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	return keywords, nil
}

// DeleteKeyword removes a keyword, its results and its score history.
func (s *SQLiteStore) DeleteKeyword(ctx context.Context, keyword string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete for %q: %w", keyword, err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM results WHERE keyword = ?",
		"DELETE FROM score_history WHERE keyword = ?",
		"DELETE FROM keywords WHERE term = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, keyword); err != nil {
			return fmt.Errorf("delete keyword %q: %w", keyword, err)
		}
	}
	return tx.Commit()
}

// AddScoreSnapshot records a score observation for trend charts.
func (s *SQLiteStore) AddScoreSnapshot(ctx context.Context, keyword string, score int, checkedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_history (keyword, score, checked_at) VALUES (?, ?, ?)
	`, keyword, score, checkedAt)
	if err != nil {
		return fmt.Errorf("add score snapshot for %q: %w", keyword, err)
	}
	return nil
}

// GetScoreHistory returns score snapshots for a keyword since a point in
// time, oldest first. A zero since returns the full trail.
func (s *SQLiteStore) GetScoreHistory(ctx context.Context, keyword string, since time.Time) ([]ScoreSnapshot, error) {
	query := "SELECT * FROM score_history WHERE keyword = ?"
	args := []any{keyword}
	if !since.IsZero() {
		query += " AND checked_at >= ?"
		args = append(args, since)
	}
	query += " ORDER BY checked_at"

	var snaps []ScoreSnapshot
	if err := s.db.SelectContext(ctx, &snaps, query, args...); err != nil {
		return nil, fmt.Errorf("get score history for %q: %w", keyword, err)
	}
	return snaps, nil
}
