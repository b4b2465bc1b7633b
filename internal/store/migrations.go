package store

const schema = `
CREATE TABLE IF NOT EXISTS keywords (
    term         TEXT PRIMARY KEY,
    last_updated DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    keyword      TEXT NOT NULL REFERENCES keywords(term) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    id           TEXT NOT NULL,
    rank         INTEGER NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    domain       TEXT NOT NULL DEFAULT '',
    snippet      TEXT NOT NULL DEFAULT '',
    serp_feature TEXT NOT NULL DEFAULT '',
    sentiment    TEXT NOT NULL DEFAULT 'NEUTRAL',
    has_control  BOOLEAN NOT NULL DEFAULT 0,
    rank_history TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (keyword, id)
);

CREATE INDEX IF NOT EXISTS idx_results_keyword ON results(keyword);
CREATE INDEX IF NOT EXISTS idx_results_url ON results(url);

CREATE TABLE IF NOT EXISTS score_history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword    TEXT NOT NULL,
    score      INTEGER NOT NULL,
    checked_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_score_history_keyword ON score_history(keyword);
CREATE INDEX IF NOT EXISTS idx_score_history_checked ON score_history(checked_at);
`
