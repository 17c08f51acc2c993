// Package monitor is the websnap orchestrator: it owns the browser, the
// capture engine, the artifact cache, and the capture index, and runs the
// periodic visit/capture/sweep loops.
package monitor

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/websnap/artifact"
)

// Config holds all websnap configuration.
type Config struct {
	// CacheDir is the artifact directory. Default: the platform cache
	// location resolved once at load time.
	CacheDir string `yaml:"cache_dir"`

	// DBPath is the SQLite capture index. Default: websnap.db.
	DBPath string `yaml:"db_path"`

	HTTP      HTTPConfig      `yaml:"http"`
	Browser   BrowserConfig   `yaml:"browser"`
	Retention RetentionConfig `yaml:"retention"`

	// Pages to visit and capture periodically.
	Pages []PageConfig `yaml:"pages"`
}

// HTTPConfig controls the artifact/API server.
type HTTPConfig struct {
	// Addr to listen on. Default: ":8091". Empty after defaults means the
	// server stays disabled only when set to "off".
	Addr string `yaml:"addr"`
}

// BrowserConfig controls the Chrome lifecycle.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome. Empty = launch
	// a local headless Chrome.
	Remote string `yaml:"remote"`

	// Stealth: "on" (default) applies anti-detection to every tab,
	// "off" uses plain tabs.
	Stealth string `yaml:"stealth"`

	// NavTimeout bounds navigation plus load wait. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`
}

// RetentionConfig controls the artifact cache lifecycle.
type RetentionConfig struct {
	// MaxAge before an artifact is swept. Default: 24h.
	MaxAge time.Duration `yaml:"max_age"`

	// SweepInterval between retention passes. Default: 1h. A pass also
	// runs once at startup.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// PageConfig defines one monitored page.
type PageConfig struct {
	// ID identifies the page in the index and logs. Default: the URL.
	ID string `yaml:"id"`

	URL string `yaml:"url"`

	// Selector chain narrowing the capture to one element. Each entry is
	// either a tag/role name or an attribute predicate (contains '=',
	// '-' or ':'). Empty captures the full page surface.
	Selector []string `yaml:"selector"`

	// Interval between captures. Default: 5m.
	Interval time.Duration `yaml:"interval"`

	// FullPage captures beyond the viewport (full-surface captures only).
	FullPage bool `yaml:"full_page"`

	// Format of the artifact image: "png" (default) or "jpeg".
	Format string `yaml:"format"`

	// Quality for jpeg, 0-100.
	Quality int `yaml:"quality"`
}

func (c *Config) defaults() {
	if c.CacheDir == "" {
		c.CacheDir = artifact.Dir(runtime.GOOS, os.Getenv)
	}
	if c.DBPath == "" {
		c.DBPath = "websnap.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8091"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "on"
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Retention.MaxAge <= 0 {
		c.Retention.MaxAge = artifact.DefaultMaxAge
	}
	if c.Retention.SweepInterval <= 0 {
		c.Retention.SweepInterval = time.Hour
	}
	for i := range c.Pages {
		if c.Pages[i].ID == "" {
			c.Pages[i].ID = c.Pages[i].URL
		}
		if c.Pages[i].Interval <= 0 {
			c.Pages[i].Interval = 5 * time.Minute
		}
	}
}

func (c *Config) validate() error {
	for _, p := range c.Pages {
		if p.URL == "" {
			return fmt.Errorf("monitor: page %q has no url", p.ID)
		}
	}
	return nil
}

// LoadConfigFile reads a YAML config file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("monitor: parse config: %w", err)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
