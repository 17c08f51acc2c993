// Package domquery answers capture queries against parsed static HTML.
//
// It implements the same Queryable/Element contract as a live Chrome tab,
// minus imaging: static nodes cannot be screenshotted. Its use is selector
// preflight (resolve configured chains against fetched HTML without
// launching a browser) and as the resolver's test vehicle.
//
// Supported selector subset:
//   - tag: "button", "article"
//   - .class, #id, tag.class, tag#id
//   - [attr], [attr=val], tag[attr=val]
//   - descendant combinator: parts separated by spaces
package domquery

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/websnap/capture"
)

// ErrNotRenderable reports a screenshot attempt on a static document node.
var ErrNotRenderable = errors.New("domquery: static documents cannot be imaged")

// Document is a parsed HTML tree implementing capture.Element. Imaging it
// always fails with ErrNotRenderable; querying it searches the whole tree.
type Document struct {
	root *html.Node
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Elements returns all elements in the document matching the selector, in
// document order.
func (d *Document) Elements(ctx context.Context, sel string) ([]capture.Element, error) {
	return queryAll(d.root, sel, true), nil
}

// Screenshot always fails: there is no renderer behind a static tree.
func (d *Document) Screenshot(ctx context.Context, opts capture.ImageOptions) ([]byte, error) {
	return nil, ErrNotRenderable
}

// node wraps one element of the tree.
type node struct {
	n *html.Node
}

// Elements searches strict descendants of this node.
func (e *node) Elements(ctx context.Context, sel string) ([]capture.Element, error) {
	return queryAll(e.n, sel, false), nil
}

func (e *node) Screenshot(ctx context.Context, opts capture.ImageOptions) ([]byte, error) {
	return nil, ErrNotRenderable
}

// Tag returns the element name, for preflight diagnostics.
func (e *node) Tag() string { return e.n.Data }

// Attr returns the value of an attribute, or "".
func (e *node) Attr(key string) string { return getAttr(e.n, key) }

// queryAll matches a selector with optional descendant combinators.
// includeRoot controls whether root itself may match the first part.
func queryAll(root *html.Node, sel string, includeRoot bool) []capture.Element {
	parts := strings.Fields(sel)
	if len(parts) == 0 {
		return nil
	}

	matches := matchPart(root, parts[0], includeRoot)
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		for _, parent := range matches {
			next = append(next, matchPart(parent, parts[i], false)...)
		}
		matches = next
	}

	var out []capture.Element
	for _, m := range matches {
		out = append(out, &node{n: m})
	}
	return out
}

// matchPart finds all nodes under root matching a single selector part.
func matchPart(root *html.Node, part string, includeRoot bool) []*html.Node {
	m := parsePart(part)
	var results []*html.Node
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, self bool) {
		if self && matches(n, m) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, true)
		}
	}
	walk(root, includeRoot)
	return results
}

type part struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
}

// parsePart parses "tag.class", "#id", "tag[attr=val]", "[attr]", etc.
func parsePart(sel string) part {
	var p part

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attr := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eq := strings.IndexByte(attr, '='); eq >= 0 {
			p.attrKey = attr[:eq]
			p.attrVal = strings.Trim(attr[eq+1:], `"'`)
		} else {
			p.attrKey = attr
		}
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		p.id = sel[idx+1:]
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		p.class = sel[idx+1:]
		sel = sel[:idx]
	}

	p.tag = sel
	return p
}

func matches(n *html.Node, p part) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if p.tag != "" && n.Data != p.tag {
		return false
	}
	if p.id != "" && getAttr(n, "id") != p.id {
		return false
	}
	if p.class != "" {
		found := false
		for _, c := range strings.Fields(getAttr(n, "class")) {
			if c == p.class {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.attrKey != "" {
		if p.attrVal != "" {
			if getAttr(n, p.attrKey) != p.attrVal {
				return false
			}
		} else if !hasAttr(n, p.attrKey) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
