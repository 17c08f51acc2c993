package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{
		Pages: []PageConfig{{URL: "https://example.com"}},
	}
	cfg.defaults()

	if cfg.CacheDir == "" {
		t.Fatal("CacheDir not defaulted")
	}
	if cfg.DBPath != "websnap.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HTTP.Addr != ":8091" {
		t.Fatalf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Browser.Stealth != "on" {
		t.Fatalf("Browser.Stealth = %q", cfg.Browser.Stealth)
	}
	if cfg.Browser.NavTimeout != 30*time.Second {
		t.Fatalf("Browser.NavTimeout = %v", cfg.Browser.NavTimeout)
	}
	if cfg.Retention.MaxAge != 24*time.Hour {
		t.Fatalf("Retention.MaxAge = %v", cfg.Retention.MaxAge)
	}
	if cfg.Retention.SweepInterval != time.Hour {
		t.Fatalf("Retention.SweepInterval = %v", cfg.Retention.SweepInterval)
	}

	p := cfg.Pages[0]
	if p.ID != "https://example.com" {
		t.Fatalf("page ID = %q, want the URL", p.ID)
	}
	if p.Interval != 5*time.Minute {
		t.Fatalf("page Interval = %v", p.Interval)
	}
}

func TestConfigDefaultsKeepExplicit(t *testing.T) {
	cfg := &Config{
		CacheDir: "/tmp/shots",
		DBPath:   "custom.db",
		HTTP:     HTTPConfig{Addr: "off"},
		Pages: []PageConfig{
			{ID: "login", URL: "https://example.com", Interval: time.Minute},
		},
	}
	cfg.defaults()

	if cfg.CacheDir != "/tmp/shots" || cfg.DBPath != "custom.db" || cfg.HTTP.Addr != "off" {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	if cfg.Pages[0].ID != "login" || cfg.Pages[0].Interval != time.Minute {
		t.Fatalf("explicit page values overwritten: %+v", cfg.Pages[0])
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Pages: []PageConfig{{ID: "nourl"}}}
	cfg.defaults()
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for page without url")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "websnap.yaml")
	data := `
cache_dir: /tmp/websnap-test
db_path: test.db
http:
  addr: ":9999"
browser:
  stealth: "off"
  nav_timeout: 10s
retention:
  max_age: 48h
  sweep_interval: 30m
pages:
  - id: dashboard
    url: https://example.com/dash
    selector: ["form", "data-testid=login"]
    interval: 2m
    full_page: true
    format: jpeg
    quality: 85
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.CacheDir != "/tmp/websnap-test" {
		t.Fatalf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Fatalf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Browser.Stealth != "off" {
		t.Fatalf("Browser.Stealth = %q", cfg.Browser.Stealth)
	}
	if cfg.Retention.MaxAge != 48*time.Hour {
		t.Fatalf("Retention.MaxAge = %v", cfg.Retention.MaxAge)
	}

	if len(cfg.Pages) != 1 {
		t.Fatalf("got %d pages", len(cfg.Pages))
	}
	p := cfg.Pages[0]
	if p.ID != "dashboard" || p.URL != "https://example.com/dash" {
		t.Fatalf("page = %+v", p)
	}
	if len(p.Selector) != 2 || p.Selector[1] != "data-testid=login" {
		t.Fatalf("selector = %v", p.Selector)
	}
	if p.Interval != 2*time.Minute || !p.FullPage || p.Format != "jpeg" || p.Quality != 85 {
		t.Fatalf("page options = %+v", p)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pages: [{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
