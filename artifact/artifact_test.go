package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestName(t *testing.T) {
	if got := Name(1700000000123); got != "screenshot_1700000000123.png" {
		t.Errorf("Name = %q", got)
	}
	if got := URL(Name(42)); got != "/screenshots/screenshot_42.png" {
		t.Errorf("URL = %q", got)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"screenshot_1700000000123.png", true},
		{"screenshot_0.png", true},
		{"screenshot_.png", true},
		{"notes.txt", false},
		{"screenshot_123.jpg", false},
		{"capture_123.png", false},
	}
	for _, tt := range tests {
		if got := Match(tt.name); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	ts, ok := Timestamp("screenshot_1700000000123.png")
	if !ok || ts != 1700000000123 {
		t.Errorf("Timestamp = %d, %v", ts, ok)
	}
	if _, ok := Timestamp("screenshot_xyz.png"); ok {
		t.Error("non-numeric timestamp should not parse")
	}
	if _, ok := Timestamp("other.png"); ok {
		t.Error("non-artifact name should not parse")
	}
}

func TestDir(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	got := Dir("linux", env(map[string]string{"XDG_CACHE_HOME": "/var/cache/u"}))
	if got != filepath.Join("/var/cache/u", "websnap", "screenshots") {
		t.Errorf("linux xdg: %q", got)
	}

	got = Dir("linux", env(map[string]string{"HOME": "/home/u"}))
	if got != filepath.Join("/home/u", ".cache", "websnap", "screenshots") {
		t.Errorf("linux home fallback: %q", got)
	}

	got = Dir("windows", env(map[string]string{"LOCALAPPDATA": `C:\Users\u\AppData\Local`}))
	if got != filepath.Join(`C:\Users\u\AppData\Local`, "websnap", "screenshots") {
		t.Errorf("windows: %q", got)
	}

	// No usable environment: system temp root.
	got = Dir("plan9", env(nil))
	if got != filepath.Join(os.TempDir(), "websnap", "screenshots") {
		t.Errorf("fallback: %q", got)
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("stat: %v", err)
	}
}
