package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/websnap/artifact"
	"github.com/hazyhaar/websnap/capture"
	"github.com/hazyhaar/websnap/idgen"
	"github.com/hazyhaar/websnap/monitor/internal/browser"
	"github.com/hazyhaar/websnap/monitor/internal/store"
	"github.com/hazyhaar/websnap/selector"
)

// Monitor is the top-level orchestrator. Create one per websnap instance.
type Monitor struct {
	cfg    *Config
	mgr    *browser.Manager
	store  *store.Store
	engine *capture.Engine
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New creates a Monitor from configuration. Opens the capture index and
// prepares (but does not start) the browser.
func New(cfg *Config, logger *slog.Logger) (*Monitor, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:  cfg.Browser.Remote,
		Stealth:    cfg.Browser.Stealth != "off",
		NavTimeout: cfg.Browser.NavTimeout,
		Logger:     logger,
	})

	return &Monitor{
		cfg:    cfg,
		mgr:    mgr,
		store:  s,
		engine: capture.NewEngine(capture.WithLogger(logger)),
		logger: logger,
	}, nil
}

// StartBrowser launches (or connects to) the browser without starting
// any background loops. One-shot callers use this; Start calls it too.
func (m *Monitor) StartBrowser(ctx context.Context) error {
	return m.mgr.Start(ctx)
}

// Start launches the browser and the background loops: one capture loop
// per configured page and one retention sweep loop. Loops stop when ctx is
// cancelled; call Stop to release resources.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.StartBrowser(ctx); err != nil {
		return err
	}

	for _, page := range m.cfg.Pages {
		m.wg.Add(1)
		go m.pageLoop(ctx, page)
	}

	m.wg.Add(1)
	go m.sweepLoop(ctx)

	m.logger.Info("monitor: started",
		"pages", len(m.cfg.Pages),
		"cache_dir", m.cfg.CacheDir,
		"max_age", m.cfg.Retention.MaxAge)
	return nil
}

// Stop waits for the loops to drain and releases the browser and index.
func (m *Monitor) Stop() {
	m.wg.Wait()
	m.mgr.Close()
	if err := m.store.Close(); err != nil {
		m.logger.Warn("monitor: close index", "error", err)
	}
	m.logger.Info("monitor: stopped")
}

func (m *Monitor) pageLoop(ctx context.Context, page PageConfig) {
	defer m.wg.Done()

	ticker := time.NewTicker(page.Interval)
	defer ticker.Stop()

	// First capture immediately, then on the interval.
	m.CapturePage(ctx, page)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CapturePage(ctx, page)
		}
	}
}

func (m *Monitor) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Retention.SweepInterval)
	defer ticker.Stop()

	m.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// CapturePage visits a configured page in a fresh tab, captures it, and
// records the outcome in the index.
func (m *Monitor) CapturePage(ctx context.Context, page PageConfig) capture.Result {
	res := m.captureURL(ctx, page.URL, selector.NewChain(page.Selector...), capture.ImageOptions{
		Format:   page.Format,
		Quality:  page.Quality,
		FullPage: page.FullPage,
	})
	m.record(ctx, page.ID, page.URL, res)
	return res
}

// CaptureURL performs a one-shot capture of an arbitrary URL (HTTP API,
// MCP, CLI) and records it in the index under its URL.
func (m *Monitor) CaptureURL(ctx context.Context, pageURL string, chain selector.Chain, img capture.ImageOptions) capture.Result {
	res := m.captureURL(ctx, pageURL, chain, img)
	m.record(ctx, pageURL, pageURL, res)
	return res
}

func (m *Monitor) captureURL(ctx context.Context, pageURL string, chain selector.Chain, img capture.ImageOptions) capture.Result {
	tab, err := browser.OpenTab(ctx, m.mgr, pageURL)
	if err != nil {
		m.logger.Warn("monitor: open tab failed", "url", pageURL, "error", err)
		return capture.Result{Selector: chain.Raw(), Error: err.Error()}
	}
	defer tab.Close()

	res := m.engine.Capture(ctx, tab, m.cfg.CacheDir, capture.Options{
		Selector: chain,
		Image:    img,
	})
	if res.Success {
		m.logger.Info("monitor: captured", "url", pageURL, "file", res.Filename)
	} else {
		m.logger.Warn("monitor: capture failed", "url", pageURL, "error", res.Error)
	}
	return res
}

func (m *Monitor) record(ctx context.Context, pageID, pageURL string, res capture.Result) {
	err := m.store.InsertCapture(ctx, &store.Capture{
		ID:        idgen.New(),
		PageID:    pageID,
		PageURL:   pageURL,
		Selector:  res.Selector,
		Filename:  res.Filename,
		Filepath:  res.Filepath,
		URL:       res.URL,
		Timestamp: res.Timestamp,
		Success:   res.Success,
		Error:     res.Error,
	})
	if err != nil {
		m.logger.Warn("monitor: index capture failed", "page", pageID, "error", err)
	}
}

// Sweep runs one retention pass: expired artifacts are deleted from disk
// and the matching index rows are pruned.
func (m *Monitor) Sweep(ctx context.Context) (removed int, pruned int64) {
	removed, err := artifact.Sweep(m.cfg.CacheDir, m.cfg.Retention.MaxAge, m.logger)
	if err != nil {
		m.logger.Warn("monitor: sweep failed", "dir", m.cfg.CacheDir, "error", err)
		return 0, 0
	}

	cutoff := time.Now().Add(-m.cfg.Retention.MaxAge).UnixMilli()
	pruned, err = m.store.DeleteCapturesBefore(ctx, cutoff)
	if err != nil {
		m.logger.Warn("monitor: index prune failed", "error", err)
	}
	return removed, pruned
}

// Captures lists recent capture attempts, optionally filtered by page.
func (m *Monitor) Captures(ctx context.Context, pageID string, limit int) ([]*store.Capture, error) {
	if pageID != "" {
		return m.store.ListCapturesByPage(ctx, pageID, limit)
	}
	return m.store.ListCaptures(ctx, limit)
}

// Latest returns the newest successful capture for a page, or nil.
func (m *Monitor) Latest(ctx context.Context, pageID string) (*store.Capture, error) {
	return m.store.LatestCapture(ctx, pageID)
}

// Stats returns capture index counts.
func (m *Monitor) Stats(ctx context.Context) (*store.Stats, error) {
	return m.store.CaptureStats(ctx)
}

// Store returns the underlying index for direct access (testing, admin).
func (m *Monitor) Store() *store.Store {
	return m.store
}
