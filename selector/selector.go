// Package selector classifies raw selector strings and assembles them into
// resolution chains.
//
// Callers can mix two spellings without separate syntax: a plain identifier
// ("button", "nav") is a tag or role selector used verbatim, while anything
// containing '=', '-' or ':' ("data-testid=login", "aria-label:Close") is an
// attribute predicate and queried as "[...]".
package selector

import "strings"

// Kind is the selector strategy chosen by Classify.
type Kind int

const (
	// Tag selectors are queried verbatim.
	Tag Kind = iota
	// Attribute selectors are wrapped as "[raw]" before querying.
	Attribute
)

// attributeMarkers are the bytes that flip a raw string to an
// attribute predicate.
const attributeMarkers = "=-:"

// Selector is one stage of a chain: the caller's raw string plus the
// strategy chosen for it.
type Selector struct {
	Raw  string
	Kind Kind
}

// Classify chooses the query strategy for a raw selector string.
func Classify(raw string) Selector {
	if strings.ContainsAny(raw, attributeMarkers) {
		return Selector{Raw: raw, Kind: Attribute}
	}
	return Selector{Raw: raw, Kind: Tag}
}

// Query returns the string handed to the document query backend.
func (s Selector) Query() string {
	if s.Kind == Attribute {
		return "[" + s.Raw + "]"
	}
	return s.Raw
}

// Chain is an ordered selector list narrowing from containers down to a
// target element. Resolution requires at least one entry.
type Chain []Selector

// NewChain classifies each raw string into a chain. Order is preserved.
func NewChain(raw ...string) Chain {
	if len(raw) == 0 {
		return nil
	}
	c := make(Chain, len(raw))
	for i, r := range raw {
		c[i] = Classify(r)
	}
	return c
}

// Raw returns the caller-supplied strings. Nil for an empty chain, so a
// JSON-marshalled absent selector stays null.
func (c Chain) Raw() []string {
	if len(c) == 0 {
		return nil
	}
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Raw
	}
	return out
}

// String renders the chain for error messages and logs.
func (c Chain) String() string {
	return strings.Join(c.Raw(), " ")
}
