package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/websnap/artifact"
	"github.com/hazyhaar/websnap/selector"
)

// Options configures a single capture request.
type Options struct {
	// Selector narrows the capture to one element. Empty means the full
	// source surface.
	Selector selector.Chain

	// Image options forwarded to the screenshot backend.
	Image ImageOptions
}

// Result is the structured outcome of one capture call. Exactly one of the
// success/error branches is populated.
type Result struct {
	Success   bool     `json:"success"`
	Filename  string   `json:"filename,omitempty"`
	Filepath  string   `json:"filepath,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
	URL       string   `json:"url,omitempty"`
	Selector  []string `json:"selector"`
	Error     string   `json:"error,omitempty"`
}

// Engine captures screenshots into a cache directory. Safe for concurrent
// use: captures are independent and share nothing but the directory.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a capture engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Capture resolves the optional selector chain against source, images the
// target, and writes the artifact into cacheDir. It never returns an
// error: every failure path is reported through the Result, and nothing is
// written unless the capture succeeded end to end.
//
// Artifacts are named screenshot_<unixMillis>.png. Two captures within the
// same millisecond collide and the later write wins; the monitoring
// cadence makes this acceptable and the naming scheme is an external
// compatibility contract.
func (e *Engine) Capture(ctx context.Context, source Element, cacheDir string, opts Options) Result {
	if err := artifact.EnsureDir(cacheDir); err != nil {
		e.logger.Error("capture: cache dir", "dir", cacheDir, "error", err)
		return Result{Selector: opts.Selector.Raw(), Error: err.Error()}
	}

	ts := e.now().UnixMilli()
	filename := artifact.Name(ts)
	path := filepath.Join(cacheDir, filename)

	target := source
	if len(opts.Selector) > 0 {
		resolved, err := Resolve(ctx, source, opts.Selector)
		if err != nil {
			e.logger.Debug("capture: resolution failed", "selector", opts.Selector.String(), "error", err)
			return Result{
				Selector: opts.Selector.Raw(),
				Error:    fmt.Sprintf("Element with selector %q not found", opts.Selector.String()),
			}
		}
		target = resolved
	}

	img, err := target.Screenshot(ctx, opts.Image)
	if err != nil {
		e.logger.Warn("capture: screenshot failed", "selector", opts.Selector.String(), "error", err)
		return Result{Selector: opts.Selector.Raw(), Error: err.Error()}
	}

	if err := os.WriteFile(path, img, 0o644); err != nil {
		e.logger.Warn("capture: write failed", "path", path, "error", err)
		return Result{Selector: opts.Selector.Raw(), Error: err.Error()}
	}

	return Result{
		Success:   true,
		Filename:  filename,
		Filepath:  path,
		Timestamp: ts,
		URL:       artifact.URL(filename),
		Selector:  opts.Selector.Raw(),
	}
}
