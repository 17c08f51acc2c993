// Command websnap monitors web pages and captures screenshots into the
// platform artifact cache.
//
// Usage:
//
//	websnap -config websnap.yaml                       # daemon: loops + HTTP
//	websnap -capture https://example.com               # one-shot full page
//	websnap -capture https://example.com -selector "form,data-testid=login"
//	websnap -check -config websnap.yaml                # probe selectors, no Chrome
//	websnap -sweep                                     # one retention pass
//	websnap -stats                                     # index counts
//	websnap -config websnap.yaml -mcp stdio            # daemon + MCP on stdio
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/websnap/capture"
	"github.com/hazyhaar/websnap/monitor"
	"github.com/hazyhaar/websnap/selector"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to websnap.yaml config file")
	dbPath := flag.String("db", "", "path to the SQLite capture index")
	cacheDir := flag.String("cache-dir", "", "artifact directory (default: platform cache)")
	httpAddr := flag.String("http", "", `HTTP listen address ("off" disables)`)
	captureURL := flag.String("capture", "", "capture one URL and exit")
	selectorList := flag.String("selector", "", "comma-separated selector chain for -capture")
	fullPage := flag.Bool("full-page", false, "capture beyond the viewport (with -capture)")
	check := flag.Bool("check", false, "probe configured selectors over plain HTTP and exit")
	sweep := flag.Bool("sweep", false, "run one retention pass and exit")
	showStats := flag.Bool("stats", false, "show capture index counts and exit")
	mcpTransport := flag.String("mcp", "", `MCP transport: "stdio" or empty`)
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := runOptions{
		configPath:   *configPath,
		dbPath:       *dbPath,
		cacheDir:     *cacheDir,
		httpAddr:     *httpAddr,
		captureURL:   *captureURL,
		selectorList: *selectorList,
		fullPage:     *fullPage,
		check:        *check,
		sweep:        *sweep,
		showStats:    *showStats,
		mcpTransport: *mcpTransport,
	}
	if err := run(ctx, logger, opts); err != nil {
		logger.Error("websnap: fatal", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath   string
	dbPath       string
	cacheDir     string
	httpAddr     string
	captureURL   string
	selectorList string
	fullPage     bool
	check        bool
	sweep        bool
	showStats    bool
	mcpTransport string
}

func run(ctx context.Context, logger *slog.Logger, opts runOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	// One-shot: probe selectors without Chrome.
	if opts.check {
		results, err := monitor.ProbePages(ctx, http.DefaultClient, cfg.Pages)
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}
		return printJSON(results)
	}

	m, err := monitor.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer m.Stop()

	// One-shot: sweep.
	if opts.sweep {
		removed, pruned := m.Sweep(ctx)
		return printJSON(map[string]any{"removed": removed, "pruned": pruned})
	}

	// One-shot: stats.
	if opts.showStats {
		stats, err := m.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return printJSON(stats)
	}

	// One-shot: capture a single URL.
	if opts.captureURL != "" {
		if err := m.StartBrowser(ctx); err != nil {
			return fmt.Errorf("browser: %w", err)
		}

		chain := selector.NewChain(splitSelector(opts.selectorList)...)
		res := m.CaptureURL(ctx, opts.captureURL, chain, capture.ImageOptions{
			FullPage: opts.fullPage,
		})
		if err := printJSON(res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("capture: %s", res.Error)
		}
		return nil
	}

	// Daemon mode.
	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	go func() {
		if err := m.Serve(ctx); err != nil {
			logger.Error("websnap: http server", "error", err)
		}
	}()

	if opts.mcpTransport == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "websnap",
			Version: version,
		}, nil)
		m.RegisterMCP(srv)
		go func() {
			if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("websnap: mcp stdio", "error", err)
			}
		}()
	}

	logger.Info("websnap: running", "db", cfg.DBPath, "cache_dir", cfg.CacheDir)
	<-ctx.Done()
	logger.Info("websnap: shutting down")
	return nil
}

func resolveConfig(opts runOptions) (*monitor.Config, error) {
	var cfg *monitor.Config
	if opts.configPath != "" {
		loaded, err := monitor.LoadConfigFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &monitor.Config{}
	}

	// Flags override file values.
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.cacheDir != "" {
		cfg.CacheDir = opts.cacheDir
	}
	if opts.httpAddr != "" {
		cfg.HTTP.Addr = opts.httpAddr
	}
	return cfg, nil
}

func splitSelector(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
