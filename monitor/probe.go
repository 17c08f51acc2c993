package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hazyhaar/websnap/capture"
	"github.com/hazyhaar/websnap/domquery"
	"github.com/hazyhaar/websnap/selector"
)

// probeBodyLimit caps how much HTML a preflight fetch will read.
const probeBodyLimit = 10 << 20 // 10MB

// ProbeResult reports whether one selector chain resolves against the
// fetched document.
type ProbeResult struct {
	Selector []string `json:"selector"`
	Found    bool     `json:"found"`
	Error    string   `json:"error,omitempty"`
}

// Probe fetches pageURL over plain HTTP and resolves each chain against
// the static document. It validates selector configuration without
// launching Chrome; pages that only render client-side will report
// chains as missing even when a browser capture would find them.
func Probe(ctx context.Context, client *http.Client, pageURL string, chains []selector.Chain) ([]ProbeResult, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("monitor: probe request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("monitor: probe fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("monitor: probe fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := domquery.Parse(io.LimitReader(resp.Body, probeBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("monitor: probe parse %s: %w", pageURL, err)
	}

	results := make([]ProbeResult, 0, len(chains))
	for _, chain := range chains {
		r := ProbeResult{Selector: chain.Raw()}
		if _, err := capture.Resolve(ctx, doc, chain); err != nil {
			r.Error = err.Error()
		} else {
			r.Found = true
		}
		results = append(results, r)
	}
	return results, nil
}

// ProbePages runs Probe for every configured page that has a selector
// chain, keyed by page ID.
func ProbePages(ctx context.Context, client *http.Client, pages []PageConfig) (map[string][]ProbeResult, error) {
	out := make(map[string][]ProbeResult)
	for _, p := range pages {
		if len(p.Selector) == 0 {
			continue
		}
		res, err := Probe(ctx, client, p.URL, []selector.Chain{selector.NewChain(p.Selector...)})
		if err != nil {
			out[p.ID] = []ProbeResult{{Selector: p.Selector, Error: err.Error()}}
			continue
		}
		out[p.ID] = res
	}
	return out, nil
}
