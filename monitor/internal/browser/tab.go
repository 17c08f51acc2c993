package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/websnap/capture"
)

// Tab wraps a Rod page and exposes it as a capture source: querying it
// searches the whole document, imaging it captures the visible surface.
type Tab struct {
	Page    *rod.Page
	PageURL string
}

var _ capture.Element = (*Tab)(nil)

// OpenTab creates a new tab with stealth applied, navigates to the URL,
// and waits for the load event (bounded by NavTimeout).
func OpenTab(ctx context.Context, mgr *Manager, pageURL string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var page *rod.Page
	var err error

	if mgr.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, mgr.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, PageURL: pageURL}, nil
}

// Elements returns all elements in the document matching the selector, in
// document order.
func (t *Tab) Elements(ctx context.Context, sel string) ([]capture.Element, error) {
	els, err := t.Page.Context(ctx).Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", sel, err)
	}
	return wrapElements(els), nil
}

// Screenshot captures the page surface. FullPage extends the capture
// beyond the viewport.
func (t *Tab) Screenshot(ctx context.Context, opts capture.ImageOptions) ([]byte, error) {
	format, quality := protoFormat(opts)
	req := &proto.PageCaptureScreenshot{Format: format}
	if quality != nil {
		req.Quality = quality
	}
	img, err := t.Page.Context(ctx).Screenshot(opts.FullPage, req)
	if err != nil {
		return nil, fmt.Errorf("browser: screenshot %s: %w", t.PageURL, err)
	}
	return img, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}

// element wraps a Rod element as a capture target.
type element struct {
	el *rod.Element
}

var _ capture.Element = (*element)(nil)

// Elements searches descendants of this element.
func (e *element) Elements(ctx context.Context, sel string) ([]capture.Element, error) {
	els, err := e.el.Context(ctx).Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("browser: query %q: %w", sel, err)
	}
	return wrapElements(els), nil
}

// Screenshot captures this element only.
func (e *element) Screenshot(ctx context.Context, opts capture.ImageOptions) ([]byte, error) {
	format, quality := protoFormat(opts)
	q := 0
	if quality != nil {
		q = *quality
	}
	img, err := e.el.Context(ctx).Screenshot(format, q)
	if err != nil {
		return nil, fmt.Errorf("browser: element screenshot: %w", err)
	}
	return img, nil
}

func wrapElements(els rod.Elements) []capture.Element {
	if len(els) == 0 {
		return nil
	}
	out := make([]capture.Element, len(els))
	for i, el := range els {
		out[i] = &element{el: el}
	}
	return out
}

// protoFormat maps pass-through image options onto the CDP request.
func protoFormat(opts capture.ImageOptions) (proto.PageCaptureScreenshotFormat, *int) {
	switch opts.Format {
	case "jpeg", "jpg":
		q := opts.Quality
		if q <= 0 || q > 100 {
			q = 80
		}
		return proto.PageCaptureScreenshotFormatJpeg, &q
	default:
		return proto.PageCaptureScreenshotFormatPng, nil
	}
}
