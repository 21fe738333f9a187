// inlinedoc/helpers_cache.go
// Contains the region-keyed result cache and memory-cache (Ristretto) helpers.
package inlinedoc

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ============================================================================
// Region Cache
// ============================================================================

// CacheEntry binds a source region to the candidate batch that described its
// text at capture time. Entries are deleted on any edit touching the region,
// never updated in place: re-deriving bounds after an edit is unreliable.
type CacheEntry struct {
	Region     Region
	SourceText string
	Candidates []Candidate
}

// RegionCache stores the last backend answer per source region. It is the Go
// rendition of host-managed text annotations with auto-invalidation: wire it
// to a Document change stream via Subscribe(cache.InvalidateRange) and any
// edit evicts the entries it touches.
type RegionCache struct {
	mu      sync.Mutex
	entries map[Region]*CacheEntry
	logger  *slog.Logger
}

// NewRegionCache creates an empty cache.
func NewRegionCache(logger *slog.Logger) *RegionCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegionCache{
		entries: make(map[Region]*CacheEntry),
		logger:  logger.With("component", "RegionCache"),
	}
}

// Lookup returns the entry covering exactly r, if any. Trust (source text
// still matching the live buffer) is the caller's check; the cache only
// guarantees the entry has not been touched by an observed edit.
func (c *RegionCache) Lookup(r Region) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[r]
	return e, ok
}

// Store records candidates for region r, first removing any overlapping stale
// entries so at most one entry covers a given region at a time.
func (c *RegionCache) Store(r Region, sourceText string, candidates []Candidate) {
	if !r.Valid() {
		c.logger.Warn("Refusing to store invalid region", "start", r.Start, "end", r.End)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key != r && regionsTouch(key, r.Start, r.End) {
			delete(c.entries, key)
		}
	}
	c.entries[r] = &CacheEntry{Region: r, SourceText: sourceText, Candidates: candidates}
	c.logger.Debug("Stored cache entry", "start", r.Start, "end", r.End, "candidates", len(candidates))
}

// Invalidate removes the entry for exactly region r, if present.
func (c *RegionCache) Invalidate(r Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, r)
}

// InvalidateRange evicts every entry whose region is touched by an edit of
// [start,end). The comparison is boundary-inclusive so an insertion exactly at
// a region edge (start == end on the boundary) still evicts. Returns the
// number of entries removed.
func (c *RegionCache) InvalidateRange(start, end int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if regionsTouch(key, start, end) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Invalidated cache entries on edit", "edit_start", start, "edit_end", end, "removed", removed)
	}
	return removed
}

// Reset removes all entries. Idempotent; exposed to users as a recovery action
// for when background invalidation has a gap.
func (c *RegionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > 0 {
		c.logger.Debug("Resetting region cache", "entries", len(c.entries))
	}
	c.entries = make(map[Region]*CacheEntry)
}

// Len returns the number of live entries.
func (c *RegionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// regionsTouch reports whether region r intersects the edit [start,end],
// treating both ranges as closed so boundary insertions count.
func regionsTouch(r Region, start, end int) bool {
	return start <= r.End && end >= r.Start
}

// ============================================================================
// Memory Cache Helpers (Ristretto memoization)
// ============================================================================

// memoizer abstracts the ristretto-backed display-string memo so the helper
// below stays testable without a real cache.
type memoizer interface {
	MemoEnabled() bool
	GetMemo(key string) (any, bool)
	SetMemo(key string, value any, cost int64, ttl time.Duration) bool
}

// memoKey builds a memo key from the document version and cursor offset.
// Version changes on every edit, so stale keys simply become unreachable.
func memoKey(version, cursor int) string {
	return fmt.Sprintf("doc:%d:%d", version, cursor)
}

// withMemo wraps computeFn with memoization. computeFn additionally reports
// whether its result is cacheable — a tick that is still resolving must not be
// memoized, or the eventual refresh would keep reading the empty placeholder.
// Returns the result, a cache-hit flag, and any error from computeFn.
func withMemo[T any](m memoizer, key string, cost int64, ttl time.Duration, computeFn func() (T, bool, error), logger *slog.Logger) (T, bool, error) {
	var zero T
	if logger == nil {
		logger = slog.Default()
	}
	memoLogger := logger.With("memo_key", key)

	if m == nil || !m.MemoEnabled() {
		result, _, err := computeFn()
		return result, false, err
	}

	if cached, found := m.GetMemo(key); found {
		if typed, ok := cached.(T); ok {
			memoLogger.Debug("Memo hit")
			return typed, true, nil
		}
		memoLogger.Error("Memo type assertion failed", "expected_type", fmt.Sprintf("%T", zero), "actual_type", fmt.Sprintf("%T", cached))
	}

	result, cacheable, err := computeFn()
	if err != nil {
		return zero, false, err
	}
	if !cacheable {
		return result, false, nil
	}

	if cost <= 0 {
		cost = 1 // Ristretto cost must be positive.
	}
	if !m.SetMemo(key, result, cost, ttl) {
		memoLogger.Debug("Memo set rejected", "cost", cost, "ttl", ttl)
	}
	return result, false, nil
}

// estimateCost sizes a memo entry for ristretto admission.
func estimateCost(v any) int64 {
	switch val := v.(type) {
	case string:
		if len(val) == 0 {
			return 1
		}
		return int64(len(val))
	case []byte:
		if len(val) == 0 {
			return 1
		}
		return int64(len(val))
	default:
		return 1
	}
}
