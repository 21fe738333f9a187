// inlinedoc.go
// Package inlinedoc renders one-line inline documentation for the identifier
// or enclosing call under an editor cursor, backed by an external
// symbol-completion engine with region-keyed result caching.
package inlinedoc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Engine drives the documentation pipeline for one open document: classify
// the cursor context, consult the region cache, otherwise dispatch a backend
// query whose reply (synchronous or asynchronous) feeds the cache. Construct
// one Engine per document at open time and Close it at close time.
type Engine struct {
	doc      *Document
	cache    *RegionCache
	backend  Backend
	refresh  RefreshFunc
	memCache *ristretto.Cache
	logger   *slog.Logger

	mu         sync.RWMutex // Protects config, classifier and closed.
	config     Config
	classifier *Classifier
	closed     bool
}

// NewEngine creates an engine for a document with the given initial text.
// backend may be nil, in which case the built-in declaration scanner serves
// candidates from the document itself. refresh may be nil when the host polls
// instead of reacting to refresh requests.
func NewEngine(text string, backend Backend, refresh RefreshFunc, cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engineLogger := logger.With("component", "Engine")

	if err := cfg.Validate(engineLogger); err != nil {
		return nil, err
	}

	memCache, cacheErr := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 22, // 4MB of memoized display strings is plenty.
		BufferItems: 64,
		Metrics:     true,
	})
	if cacheErr != nil {
		engineLogger.Warn("Failed to create ristretto memo cache, memoization disabled.", "error", cacheErr)
		memCache = nil
	}

	e := &Engine{
		doc:        NewDocument(text),
		cache:      NewRegionCache(engineLogger),
		classifier: NewClassifier(cfg.IgnoreTokens...),
		backend:    backend,
		refresh:    refresh,
		memCache:   memCache,
		logger:     engineLogger,
		config:     cfg,
	}
	if e.backend == nil {
		e.backend = NewScanBackend(func() []byte {
			buf, _ := e.doc.Snapshot()
			return buf
		}, engineLogger)
	}

	// The cache subscribes to the document change stream; every edit evicts
	// the entries it touches, boundary insertions included.
	e.doc.Subscribe(func(start, end int) {
		e.cache.InvalidateRange(start, end)
	})

	return e, nil
}

// Document exposes the engine's buffer for hosts that apply edits directly.
func (e *Engine) Document() *Document { return e.doc }

// SetText replaces the whole buffer content, invalidating all cached regions.
func (e *Engine) SetText(text string) { e.doc.SetText(text) }

// ApplyEdit replaces [start,end) of the buffer with replacement.
func (e *Engine) ApplyEdit(start, end int, replacement string) error {
	return e.doc.Apply(start, end, replacement)
}

// DocumentAt is the top-level documentation function, invoked on every
// display-refresh tick. It returns the display string for the target under
// cursor, or "" when there is nothing to show — no target, cursor in a
// comment, or a backend query still resolving (in which case the refresh
// callback re-enters here once the reply lands).
func (e *Engine) DocumentAt(ctx context.Context, cursor int) (string, error) {
	e.mu.RLock()
	cfg := e.config
	cl := e.classifier
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return "", ErrEngineClosed
	}

	buf, version := e.doc.Snapshot()
	if cursor < 0 || cursor > len(buf) {
		return "", fmt.Errorf("%w: cursor %d on %d bytes", ErrPositionOutOfRange, cursor, len(buf))
	}

	out, hit, err := withMemo(e, memoKey(version, cursor), 0, cfg.MemoryCacheTTL, func() (string, bool, error) {
		return e.documentAtUncached(ctx, cl, buf, cursor, cfg)
	}, e.logger)
	if err != nil {
		return "", err
	}
	if hit {
		e.logger.Debug("Display string served from memo", "version", version, "cursor", cursor)
	}
	return out, nil
}

// documentAtUncached runs one classify → cache → dispatch tick. The boolean
// result reports whether the outcome may be memoized: a tick that left a
// backend query outstanding must not be.
func (e *Engine) documentAtUncached(ctx context.Context, cl *Classifier, buf []byte, cursor int, cfg Config) (string, bool, error) {
	target := cl.Classify(buf, cursor, false)
	if target == nil {
		return "", true, nil
	}
	tickLogger := e.logger.With("kind", target.Kind.String(), "target", target.Text, "cursor", cursor)

	if entry, ok := e.cache.Lookup(target.Region()); ok {
		if entry.SourceText == target.Text {
			tickLogger.Debug("Presenting from region cache", "candidates", len(entry.Candidates))
			return e.render(*target, entry.Candidates, cfg), true, nil
		}
		// The region text changed without the cache observing an edit.
		// Background invalidation has no perfect containment guarantee, so
		// drop the entry and fall through to a fresh dispatch.
		tickLogger.Warn("Evicting cache entry with mismatched source text")
		e.cache.Invalidate(target.Region())
	}

	d := &dispatcher{backend: e.backend, cache: e.cache, doc: e.doc, refresh: e.refresh, logger: tickLogger}
	candidates, ready := d.Dispatch(ctx, *target)
	if !ready {
		tickLogger.Debug("Backend reply pending, tick stays resolving")
		return "", false, nil
	}
	return e.render(*target, candidates, cfg), true, nil
}

// render turns a candidate batch into the final display line.
func (e *Engine) render(t Target, candidates []Candidate, cfg Config) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		var s string
		if t.Kind == TargetCall {
			s = FormatCall(t.ArgIndex, t.ArgCount, c, cfg)
		} else {
			s = FormatSymbol(c, cfg)
		}
		if s != "" {
			parts = append(parts, s)
		}
		if len(parts) == cfg.MaxCandidates {
			break
		}
	}
	return strings.Join(parts, candidateSeparator)
}

// ResetCache clears all cached entries for the document, both the region
// cache and the memoized display strings. Idempotent; the next identical
// query dispatches to the backend again.
func (e *Engine) ResetCache() {
	e.cache.Reset()
	e.mu.RLock()
	mc := e.memCache
	e.mu.RUnlock()
	if mc != nil {
		mc.Clear()
	}
	e.logger.Info("Caches reset")
}

// UpdateConfig swaps the active configuration after validating it.
func (e *Engine) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(e.logger); err != nil {
		return err
	}
	e.mu.Lock()
	e.config = cfg
	e.classifier = NewClassifier(cfg.IgnoreTokens...)
	mc := e.memCache
	e.mu.Unlock()
	// Formatting toggles changed; memoized strings are stale.
	if mc != nil {
		mc.Clear()
	}
	e.logger.Info("Engine configuration updated")
	return nil
}

// GetCurrentConfig returns a copy of the active configuration.
func (e *Engine) GetCurrentConfig() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// CacheMetrics returns ristretto metrics for the memo cache, or nil when
// memoization is disabled.
func (e *Engine) CacheMetrics() *ristretto.Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.memCache == nil {
		return nil
	}
	return e.memCache.Metrics
}

// Close releases engine resources. Further DocumentAt calls fail with
// ErrEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.memCache != nil {
		e.memCache.Close()
		e.memCache = nil
	}
	e.cache.Reset()
	e.logger.Debug("Engine closed")
	return nil
}

// ============================================================================
// memoizer implementation (ristretto)
// ============================================================================

// MemoEnabled reports whether the display-string memo is active.
func (e *Engine) MemoEnabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.memCache != nil && !e.closed
}

// GetMemo retrieves a memoized value.
func (e *Engine) GetMemo(key string) (any, bool) {
	e.mu.RLock()
	mc := e.memCache
	e.mu.RUnlock()
	if mc == nil {
		return nil, false
	}
	return mc.Get(key)
}

// SetMemo stores a memoized value with cost and ttl.
func (e *Engine) SetMemo(key string, value any, cost int64, ttl time.Duration) bool {
	e.mu.RLock()
	mc := e.memCache
	e.mu.RUnlock()
	if mc == nil {
		return false
	}
	if cost <= 0 {
		cost = estimateCost(value)
	}
	return mc.SetWithTTL(key, value, cost, ttl)
}
