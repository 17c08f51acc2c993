package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/websnap/selector"
)

// ErrNotFound reports that a selector chain matched nothing.
var ErrNotFound = errors.New("element not found")

// ErrEmptyChain reports a resolution request without selectors. Callers
// wanting a full-surface capture skip resolution entirely.
var ErrEmptyChain = errors.New("empty selector chain")

// ResolutionError carries the chain that failed and the underlying cause.
// Resolution never panics and never logs; callers decide how to surface
// the failure.
type ResolutionError struct {
	Chain selector.Chain
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Chain.String(), e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolve narrows a selector chain against root down to a single element.
//
// Stage 0 queries root for containers matching the first selector. A
// length-1 chain returns the first container. Longer chains scan the
// current set in document order: the first member with at least one
// descendant match for the next selector wins immediately, and its matches
// become the set for the following stage. A container earlier in document
// order with zero matches never shadows a later one that has some.
//
// Query errors on individual containers count as zero matches for that
// container; if the chain ends unresolved the last such error is carried
// in the returned ResolutionError, otherwise the cause is ErrNotFound.
func Resolve(ctx context.Context, root Queryable, chain selector.Chain) (Element, error) {
	if len(chain) == 0 {
		return nil, &ResolutionError{Chain: chain, Err: ErrEmptyChain}
	}

	containers, err := root.Elements(ctx, chain[0].Query())
	if err != nil {
		return nil, &ResolutionError{Chain: chain, Err: err}
	}
	if len(containers) == 0 {
		return nil, &ResolutionError{Chain: chain, Err: ErrNotFound}
	}

	set := containers
	var lastErr error

	for stage := 1; stage < len(chain); stage++ {
		query := chain[stage].Query()
		var next []Element

		for _, node := range set {
			matches, err := node.Elements(ctx, query)
			if err != nil {
				lastErr = err
				continue
			}
			if len(matches) > 0 {
				next = matches
				break // first container with a match wins
			}
		}

		if next == nil {
			if lastErr != nil {
				return nil, &ResolutionError{Chain: chain, Err: lastErr}
			}
			return nil, &ResolutionError{Chain: chain, Err: ErrNotFound}
		}
		set = next
	}

	return set[0], nil
}
