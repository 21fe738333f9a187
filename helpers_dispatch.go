// inlinedoc/helpers_dispatch.go
// Contains the query dispatcher: one backend request per dispatch, with the
// synchronous and asynchronous reply paths handled uniformly.
package inlinedoc

import (
	"context"
	"log/slog"
	"sync"
)

// Backend is the external symbol-completion engine supplying candidates for a
// buffer position. It may invoke onReply before RequestCandidates returns
// (synchronous path) or from a later goroutine (asynchronous path); the design
// assumes exactly one onReply call per request, possibly with no candidates.
// There is no cancellation: a reply that arrives too late is detected and
// discarded by the dispatcher.
type Backend interface {
	RequestCandidates(ctx context.Context, pos int, onReply func([]Candidate))
}

// RefreshFunc asks the host to invoke the documentation function again now and
// display its result.
type RefreshFunc func()

// dispatcher issues backend queries for classified targets and routes replies
// into the region cache.
type dispatcher struct {
	backend Backend
	cache   *RegionCache
	doc     *Document
	refresh RefreshFunc
	logger  *slog.Logger
}

// Dispatch issues exactly one backend request for target t and returns the
// candidates plus true when the backend replied before control came back
// (synchronous path). On the asynchronous path it returns (nil, false) and the
// reply handler later stores the result and requests a display refresh.
//
// The returned-flag bookkeeping is the central correctness requirement here:
// refreshing unconditionally would either duplicate a synchronous refresh or
// trigger a spurious one for a region the cursor has since left. Replies whose
// target text no longer matches the live buffer are discarded outright — no
// cache write, no refresh.
func (d *dispatcher) Dispatch(ctx context.Context, t Target) ([]Candidate, bool) {
	var (
		mu       sync.Mutex
		returned bool
		ready    []Candidate
		readySet bool
	)

	d.backend.RequestCandidates(ctx, t.End, func(candidates []Candidate) {
		live, ok := d.doc.Slice(t.Region())
		if !ok || live != t.Text {
			d.logger.Debug("Discarding stale backend reply",
				"target", t.Text, "start", t.Start, "end", t.End)
			return
		}
		d.cache.Store(t.Region(), t.Text, candidates)

		mu.Lock()
		if !returned {
			ready = candidates
			readySet = true
			mu.Unlock()
			return
		}
		mu.Unlock()

		if d.refresh != nil {
			d.refresh()
		}
	})

	mu.Lock()
	defer mu.Unlock()
	returned = true
	return ready, readySet
}
