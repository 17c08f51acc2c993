package store

// Schema contains the DDL for the capture index.
const Schema = `
-- Captures: one row per capture attempt, success or failure.
CREATE TABLE IF NOT EXISTS captures (
    id         TEXT PRIMARY KEY,
    page_id    TEXT NOT NULL DEFAULT '',
    page_url   TEXT NOT NULL,
    selector   TEXT NOT NULL DEFAULT 'null',
    filename   TEXT NOT NULL DEFAULT '',
    filepath   TEXT NOT NULL DEFAULT '',
    url        TEXT NOT NULL DEFAULT '',
    timestamp  INTEGER NOT NULL DEFAULT 0,
    success    INTEGER NOT NULL,
    error      TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_page ON captures(page_id) WHERE page_id != '';
CREATE INDEX IF NOT EXISTS idx_captures_time ON captures(timestamp);
CREATE INDEX IF NOT EXISTS idx_captures_created ON captures(created_at);
`
