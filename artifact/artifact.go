// Package artifact owns the screenshot cache: the on-disk naming scheme,
// the platform cache directory, and age-based retention.
//
// The naming scheme screenshot_<unixMillis>.png is a persisted convention
// shared with external consumers (artifacts are served at
// /screenshots/<filename>) and must not change.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// Prefix and Ext form the artifact naming scheme.
	Prefix = "screenshot_"
	Ext    = ".png"

	// URLPath is the logical path artifacts are served under.
	URLPath = "/screenshots/"

	// appDir is the fixed subdirectory holding all artifacts.
	appDir = "websnap"
)

// Name returns the artifact filename for a capture timestamp in
// milliseconds since epoch. Filenames sort lexically by creation time.
func Name(unixMillis int64) string {
	return fmt.Sprintf("%s%d%s", Prefix, unixMillis, Ext)
}

// URL returns the logical serving path for an artifact filename.
func URL(name string) string {
	return URLPath + name
}

// Match reports whether a directory entry follows the artifact naming
// scheme. Non-matching entries are never touched by Sweep.
func Match(name string) bool {
	return strings.HasPrefix(name, Prefix) && strings.HasSuffix(name, Ext)
}

// Timestamp extracts the capture time (ms epoch) encoded in an artifact
// filename. ok is false for names outside the scheme.
func Timestamp(name string) (ts int64, ok bool) {
	if !Match(name) {
		return 0, false
	}
	ts, err := strconv.ParseInt(name[len(Prefix):len(name)-len(Ext)], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// Dir resolves the platform artifact directory for the given GOOS and
// environment. Deterministic given its inputs; it never touches the
// filesystem. Call once at process start and pass the result into the
// capture core.
//
//   - POSIX-like: $XDG_CACHE_HOME (or $HOME/.cache) /websnap/screenshots
//   - windows:    %LOCALAPPDATA% (or %APPDATA%) \websnap\screenshots
//   - otherwise:  system temp /websnap/screenshots
func Dir(goos string, getenv func(string) string) string {
	var root string

	switch goos {
	case "windows":
		if root = getenv("LOCALAPPDATA"); root == "" {
			root = getenv("APPDATA")
		}
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		if root = getenv("XDG_CACHE_HOME"); root == "" {
			if home := getenv("HOME"); home != "" {
				root = filepath.Join(home, ".cache")
			}
		}
	}

	if root == "" {
		root = os.TempDir()
	}
	return filepath.Join(root, appDir, "screenshots")
}

// EnsureDir creates the directory tree if missing. Idempotent and safe
// under concurrent invocation: MkdirAll does not fail on an existing
// directory.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("artifact: ensure dir %s: %w", path, err)
	}
	return nil
}
