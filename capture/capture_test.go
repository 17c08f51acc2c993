package capture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/websnap/artifact"
	"github.com/hazyhaar/websnap/capture"
	"github.com/hazyhaar/websnap/selector"
)

// fakeElement is a minimal capture.Element for engine tests.
type fakeElement struct {
	img      []byte
	imgErr   error
	children map[string][]capture.Element
	queryErr error
}

func (f *fakeElement) Elements(ctx context.Context, sel string) ([]capture.Element, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.children[sel], nil
}

func (f *fakeElement) Screenshot(ctx context.Context, opts capture.ImageOptions) ([]byte, error) {
	if f.imgErr != nil {
		return nil, f.imgErr
	}
	return f.img, nil
}

func fixedEngine(ts int64) *capture.Engine {
	return capture.NewEngine(capture.WithClock(func() time.Time {
		return time.UnixMilli(ts)
	}))
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCaptureFullSurface(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	page := &fakeElement{img: []byte("png-bytes")}

	res := fixedEngine(1700000000123).Capture(context.Background(), page, dir, capture.Options{})

	if !res.Success {
		t.Fatalf("success = false, error = %q", res.Error)
	}
	if res.Filename != "screenshot_1700000000123.png" {
		t.Errorf("filename = %q", res.Filename)
	}
	if res.URL != "/screenshots/screenshot_1700000000123.png" {
		t.Errorf("url = %q", res.URL)
	}
	if res.Timestamp != 1700000000123 {
		t.Errorf("timestamp = %d", res.Timestamp)
	}
	if res.Selector != nil {
		t.Errorf("selector = %v, want nil", res.Selector)
	}

	// Round-trip: the artifact exists and its basename is the filename.
	if filepath.Base(res.Filepath) != res.Filename {
		t.Errorf("filepath %q does not end in filename %q", res.Filepath, res.Filename)
	}
	data, err := os.ReadFile(res.Filepath)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("artifact content = %q", data)
	}
}

func TestCaptureCreatesCacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh", "nested")
	page := &fakeElement{img: []byte("x")}

	res := fixedEngine(1).Capture(context.Background(), page, dir, capture.Options{})
	if !res.Success {
		t.Fatalf("success = false, error = %q", res.Error)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("cache dir not created: %v", err)
	}
}

func TestCaptureResolvedElement(t *testing.T) {
	dir := t.TempDir()
	button := &fakeElement{img: []byte("button-png")}
	page := &fakeElement{
		img: []byte("full-page-png"),
		children: map[string][]capture.Element{
			"[data-testid=login]": {&fakeElement{children: map[string][]capture.Element{
				"button": {button},
			}}},
		},
	}

	chain := selector.NewChain("data-testid=login", "button")
	res := fixedEngine(99).Capture(context.Background(), page, dir, capture.Options{Selector: chain})

	if !res.Success {
		t.Fatalf("success = false, error = %q", res.Error)
	}
	if len(res.Selector) != 2 || res.Selector[0] != "data-testid=login" {
		t.Errorf("selector = %v", res.Selector)
	}
	data, _ := os.ReadFile(res.Filepath)
	if string(data) != "button-png" {
		t.Errorf("captured %q, want the element image, not the page", data)
	}
}

func TestCaptureSelectorNotFoundWritesNothing(t *testing.T) {
	dir := t.TempDir()
	page := &fakeElement{img: []byte("x")}

	res := fixedEngine(5).Capture(context.Background(), page, dir, capture.Options{
		Selector: selector.NewChain("#missing"),
	})

	if res.Success {
		t.Fatal("success = true, want failure")
	}
	want := `Element with selector "#missing" not found`
	if res.Error != want {
		t.Errorf("error = %q, want %q", res.Error, want)
	}
	if entries := dirEntries(t, dir); len(entries) != 0 {
		t.Errorf("directory not unchanged: %v", entries)
	}
}

func TestCaptureQueryErrorIsNotFound(t *testing.T) {
	dir := t.TempDir()
	page := &fakeElement{queryErr: errors.New("target crashed")}

	res := fixedEngine(5).Capture(context.Background(), page, dir, capture.Options{
		Selector: selector.NewChain("button"),
	})

	if res.Success {
		t.Fatal("success = true, want failure")
	}
	if res.Error != `Element with selector "button" not found` {
		t.Errorf("error = %q", res.Error)
	}
	if entries := dirEntries(t, dir); len(entries) != 0 {
		t.Errorf("directory not unchanged: %v", entries)
	}
}

func TestCaptureBackendFailure(t *testing.T) {
	dir := t.TempDir()
	page := &fakeElement{imgErr: errors.New("encode failed")}

	res := fixedEngine(5).Capture(context.Background(), page, dir, capture.Options{})

	if res.Success {
		t.Fatal("success = true, want failure")
	}
	if res.Error != "encode failed" {
		t.Errorf("error = %q", res.Error)
	}
	if entries := dirEntries(t, dir); len(entries) != 0 {
		t.Errorf("directory not unchanged: %v", entries)
	}
}

func TestArtifactNamesOrderedByTime(t *testing.T) {
	dir := t.TempDir()
	page := &fakeElement{img: []byte("x")}

	a := fixedEngine(100).Capture(context.Background(), page, dir, capture.Options{})
	b := fixedEngine(200).Capture(context.Background(), page, dir, capture.Options{})

	if !(a.Filename < b.Filename) {
		t.Errorf("filenames not ordered: %q vs %q", a.Filename, b.Filename)
	}
	tsA, _ := artifact.Timestamp(a.Filename)
	tsB, _ := artifact.Timestamp(b.Filename)
	if tsA != 100 || tsB != 200 {
		t.Errorf("timestamps = %d, %d", tsA, tsB)
	}
}
