// Package capture implements the element-resolution and screenshot-capture
// pipeline: a multi-strategy resolver narrowing a selector chain against a
// live document, and an engine writing image artifacts into the cache
// directory with structured success/failure results.
//
// The document tree is abstracted behind two small interfaces so the same
// pipeline runs against a Chrome tab (monitor/internal/browser) or a parsed
// static document (domquery).
package capture

import "context"

// ImageOptions are passed through opaquely to the screenshot backend. The
// engine does not interpret them beyond handing them over.
type ImageOptions struct {
	// Format of the encoded image: "png" (default) or "jpeg".
	Format string
	// Quality for lossy formats, 0-100. Ignored for png.
	Quality int
	// FullPage captures beyond the viewport. Only meaningful when the
	// capture source is a whole page.
	FullPage bool
}

// Queryable is a document node that can be searched for descendants.
type Queryable interface {
	// Elements returns all descendants matching the selector, in document
	// order. A selector matching nothing is a nil slice, not an error.
	Elements(ctx context.Context, selector string) ([]Element, error)
}

// Element is a queryable node that can be imaged. A page handle is itself
// an Element: querying it searches the whole document and imaging it
// captures the full visible surface.
type Element interface {
	Queryable

	// Screenshot returns the encoded image bytes of this node.
	Screenshot(ctx context.Context, opts ImageOptions) ([]byte, error)
}
