package artifact

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxAge is the retention threshold applied when a sweep is
// requested without one.
const DefaultMaxAge = 24 * time.Hour

// Sweep performs one retention pass over dir: every entry matching the
// artifact naming scheme whose modification time is older than maxAge is
// deleted. Other files are left untouched. A missing directory is a no-op.
//
// Per-entry failures (stat or delete racing another process) are logged
// and skipped; the sweep continues. Returns the number of artifacts
// removed. Scheduling is the caller's concern: this is a single pass.
func Sweep(dir string, maxAge time.Duration, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAge <= 0 {
		maxAge = 0 // sweep everything matching the scheme
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !Match(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logger.Warn("artifact: sweep stat failed", "name", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue // still within retention
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("artifact: sweep delete failed", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("artifact: sweep removed artifacts", "dir", dir, "count", removed)
	}
	return removed, nil
}
