package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/websnap/selector"
)

const probePage = `<!DOCTYPE html>
<html><body>
  <nav><a href="/">home</a></nav>
  <form data-testid="login">
    <input name="user">
    <button id="submit">Sign in</button>
  </form>
</body></html>`

func probeServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe(t *testing.T) {
	srv := probeServer(t, http.StatusOK, probePage)

	chains := []selector.Chain{
		selector.NewChain("form", "button"),
		selector.NewChain("data-testid=login"),
		selector.NewChain("video"),
	}
	results, err := Probe(context.Background(), srv.Client(), srv.URL, chains)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	if !results[0].Found || results[0].Error != "" {
		t.Fatalf("form button: %+v", results[0])
	}
	if !results[1].Found {
		t.Fatalf("data-testid=login: %+v", results[1])
	}
	if results[2].Found || results[2].Error == "" {
		t.Fatalf("video should be missing: %+v", results[2])
	}
}

func TestProbeNonOK(t *testing.T) {
	srv := probeServer(t, http.StatusNotFound, "gone")

	_, err := Probe(context.Background(), srv.Client(), srv.URL, []selector.Chain{selector.NewChain("body")})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestProbeUnreachable(t *testing.T) {
	srv := probeServer(t, http.StatusOK, probePage)
	url := srv.URL
	srv.Close()

	_, err := Probe(context.Background(), nil, url, []selector.Chain{selector.NewChain("body")})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestProbePages(t *testing.T) {
	srv := probeServer(t, http.StatusOK, probePage)

	pages := []PageConfig{
		{ID: "login", URL: srv.URL, Selector: []string{"form"}},
		{ID: "full", URL: srv.URL}, // no selector, skipped
		{ID: "broken", URL: "http://127.0.0.1:1", Selector: []string{"form"}},
	}
	out, err := ProbePages(context.Background(), srv.Client(), pages)
	if err != nil {
		t.Fatal(err)
	}

	if res, ok := out["login"]; !ok || len(res) != 1 || !res[0].Found {
		t.Fatalf("login: %+v", out["login"])
	}
	if _, ok := out["full"]; ok {
		t.Fatal("page without selector should be skipped")
	}
	if res, ok := out["broken"]; !ok || len(res) != 1 || res[0].Error == "" {
		t.Fatalf("broken: %+v", out["broken"])
	}
}
