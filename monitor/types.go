package monitor

import "github.com/hazyhaar/websnap/monitor/internal/store"

// Re-exported types from internal/store for use by cmd/ and external callers.
type (
	Capture = store.Capture
	Stats   = store.Stats
)
