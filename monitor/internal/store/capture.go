package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hazyhaar/websnap/dbopen"
)

// Capture is one indexed capture attempt.
type Capture struct {
	ID        string   `json:"id"`
	PageID    string   `json:"page_id,omitempty"`
	PageURL   string   `json:"page_url"`
	Selector  []string `json:"selector"`
	Filename  string   `json:"filename,omitempty"`
	Filepath  string   `json:"filepath,omitempty"`
	URL       string   `json:"url,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

// InsertCapture records a capture attempt.
func (s *Store) InsertCapture(ctx context.Context, c *Capture) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().UnixMilli()
	}
	sel, err := json.Marshal(c.Selector)
	if err != nil {
		return err
	}

	// Page loops write concurrently; retry on BUSY instead of dropping rows.
	_, err = dbopen.Exec(ctx, s.DB, `
		INSERT INTO captures
			(id, page_id, page_url, selector, filename, filepath, url,
			 timestamp, success, error, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.PageID, c.PageURL, string(sel), c.Filename, c.Filepath, c.URL,
		c.Timestamp, c.Success, c.Error, c.CreatedAt,
	)
	return err
}

// ListCaptures returns the most recent capture attempts, newest first.
func (s *Store) ListCaptures(ctx context.Context, limit int) ([]*Capture, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryCaptures(ctx, `
		SELECT id, page_id, page_url, selector, filename, filepath, url,
		       timestamp, success, error, created_at
		FROM captures ORDER BY created_at DESC LIMIT ?`, limit)
}

// ListCapturesByPage returns the most recent attempts for one page.
func (s *Store) ListCapturesByPage(ctx context.Context, pageID string, limit int) ([]*Capture, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryCaptures(ctx, `
		SELECT id, page_id, page_url, selector, filename, filepath, url,
		       timestamp, success, error, created_at
		FROM captures WHERE page_id = ?
		ORDER BY created_at DESC LIMIT ?`, pageID, limit)
}

// LatestCapture returns the newest successful capture for a page, or nil.
func (s *Store) LatestCapture(ctx context.Context, pageID string) (*Capture, error) {
	items, err := s.queryCaptures(ctx, `
		SELECT id, page_id, page_url, selector, filename, filepath, url,
		       timestamp, success, error, created_at
		FROM captures WHERE page_id = ? AND success = 1
		ORDER BY created_at DESC LIMIT 1`, pageID)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// DeleteCapturesBefore prunes index rows whose capture timestamp is older
// than cutoff (ms epoch). Called alongside the artifact sweep so the index
// does not reference deleted files. Failed attempts (timestamp 0) are
// pruned by created_at instead.
func (s *Store) DeleteCapturesBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := dbopen.Exec(ctx, s.DB, `
		DELETE FROM captures
		WHERE (success = 1 AND timestamp < ?)
		   OR (success = 0 AND created_at < ?)`, cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats holds capture index counts.
type Stats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Pages     int64 `json:"pages"`
}

// CaptureStats returns aggregate counts for the index.
func (s *Store) CaptureStats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COUNT(DISTINCT page_id)
		FROM captures`).Scan(&st.Total, &st.Succeeded, &st.Pages)
	if err != nil {
		return nil, err
	}
	st.Failed = st.Total - st.Succeeded
	return st, nil
}

func (s *Store) queryCaptures(ctx context.Context, query string, args ...any) ([]*Capture, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Capture
	for rows.Next() {
		c := &Capture{}
		var sel string
		if err := rows.Scan(
			&c.ID, &c.PageID, &c.PageURL, &sel, &c.Filename, &c.Filepath, &c.URL,
			&c.Timestamp, &c.Success, &c.Error, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if sel != "" {
			if err := json.Unmarshal([]byte(sel), &c.Selector); err != nil {
				return nil, err
			}
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
