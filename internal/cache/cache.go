// Package cache implements the request-coalescing TTL cache sitting in
// front of a configsource.Source: at most one fetch runs per key at a
// time, entries expire by TTL (and optionally TTI), and capacity
// eviction keeps the cache bounded, per spec.md §4.9.
package cache

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/cburgosro9303/vortex-config/internal/cachekey"
	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

// Eviction reasons recorded against MetricsRecorder.RecordEviction.
const (
	ReasonTTL      = "ttl"
	ReasonCapacity = "capacity"
	ReasonManual   = "manual"
	ReasonReplaced = "replaced"
)

// MetricsRecorder receives cache events; internal/metricsutil supplies
// the Prometheus-backed implementation, keeping this package decoupled
// from any particular metrics backend.
type MetricsRecorder interface {
	RecordHit()
	RecordMiss()
	RecordEviction(reason string)
	RecordOperationDuration(op string, d time.Duration)
	UpdateEntryCount(n int)
}

type noopMetrics struct{}

func (noopMetrics) RecordHit()                                  {}
func (noopMetrics) RecordMiss()                                 {}
func (noopMetrics) RecordEviction(string)                       {}
func (noopMetrics) RecordOperationDuration(string, time.Duration) {}
func (noopMetrics) UpdateEntryCount(int)                        {}

// Config configures a Cache's capacity and expiry policy.
type Config struct {
	TTL         time.Duration
	TTI         time.Duration // 0 disables time-to-idle expiry.
	MaxCapacity int
}

func (c Config) withDefaults() Config {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxCapacity == 0 {
		c.MaxCapacity = 10_000
	}
	return c
}

func (c Config) sweepInterval() time.Duration {
	base := c.TTL
	if c.TTI != 0 && c.TTI < base {
		base = c.TTI
	}
	interval := base / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 30*time.Second {
		interval = 30 * time.Second
	}
	return interval
}

// entry wraps a cached result with the bookkeeping needed for TTL/TTI
// expiry. lastAccess is read/written under the owning Cache's mu.
type entry struct {
	result     *configsource.Result
	insertedAt time.Time
	lastAccess time.Time
}

// Cache is a capacity-bounded, TTL-expiring, single-flighted cache of
// configsource.Result keyed by cachekey.Key.
type Cache struct {
	cfg     Config
	metrics MetricsRecorder

	lru   *lru.Cache
	group singleflight.Group

	mu             sync.Mutex
	reasonOverride string

	stop chan struct{}
	done chan struct{}
}

// New constructs a Cache. metrics may be nil, in which case events are
// discarded. Call Start to begin the background TTL sweep.
func New(cfg Config, metrics MetricsRecorder) (*Cache, error) {
	cfg = cfg.withDefaults()
	if metrics == nil {
		metrics = noopMetrics{}
	}
	c := &Cache{cfg: cfg, metrics: metrics, stop: make(chan struct{}), done: make(chan struct{})}

	l, err := lru.NewWithEvict(cfg.MaxCapacity, c.onEvicted)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

func (c *Cache) onEvicted(key interface{}, _ interface{}) {
	reason := c.reasonOverride
	if reason == "" {
		reason = ReasonCapacity
	}
	c.metrics.RecordEviction(reason)
	c.metrics.UpdateEntryCount(c.lru.Len())
	_ = key
}

// Get returns the cached result for key, if present and not expired.
// A stale entry found during Get is treated as a miss but left for the
// sweep goroutine to remove, keeping Get itself allocation-light.
func (c *Cache) Get(key cachekey.Key) (*configsource.Result, bool) {
	start := time.Now()
	defer func() { c.metrics.RecordOperationDuration("get", time.Since(start)) }()

	raw, ok := c.lru.Get(key)
	if !ok {
		c.metrics.RecordMiss()
		return nil, false
	}
	e := raw.(*entry)
	if c.expired(e) {
		c.metrics.RecordMiss()
		return nil, false
	}

	c.mu.Lock()
	e.lastAccess = time.Now()
	c.mu.Unlock()

	c.metrics.RecordHit()
	return e.result, true
}

func (c *Cache) expired(e *entry) bool {
	now := time.Now()
	if now.Sub(e.insertedAt) >= c.cfg.TTL {
		return true
	}
	if c.cfg.TTI > 0 {
		c.mu.Lock()
		lastAccess := e.lastAccess
		c.mu.Unlock()
		if now.Sub(lastAccess) >= c.cfg.TTI {
			return true
		}
	}
	return false
}

// Insert stores result under key, replacing any existing entry.
func (c *Cache) Insert(key cachekey.Key, result *configsource.Result) {
	c.mu.Lock()
	existed := c.lru.Contains(key)
	c.reasonOverride = ReasonCapacity
	now := time.Now()
	c.lru.Add(key, &entry{result: result, insertedAt: now, lastAccess: now})
	c.reasonOverride = ""
	c.mu.Unlock()

	if existed {
		c.metrics.RecordEviction(ReasonReplaced)
	}
	c.metrics.UpdateEntryCount(c.lru.Len())
}

// GetOrFetch returns the cached result for key if present, otherwise
// calls fetch at most once across all concurrent callers sharing key
// and caches the result on success. Errors are never cached, matching
// spec.md §4.9's "do not store failures" requirement.
func (c *Cache) GetOrFetch(ctx context.Context, key cachekey.Key, fetch func(context.Context) (*configsource.Result, error)) (*configsource.Result, error) {
	if result, ok := c.Get(key); ok {
		return result, nil
	}

	start := time.Now()
	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Insert(key, result)
		return result, nil
	})
	c.metrics.RecordOperationDuration("get_or_fetch_miss", time.Since(start))
	if err != nil {
		return nil, err
	}
	return v.(*configsource.Result), nil
}

// EntryCount returns the approximate number of entries in the cache.
func (c *Cache) EntryCount() int { return c.lru.Len() }

// Start begins the background TTL/TTI sweep goroutine.
func (c *Cache) Start() {
	go c.sweepLoop()
}

// Stop signals the sweep goroutine to exit and waits for it.
func (c *Cache) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Cache) sweepLoop() {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.sweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep() {
	removed := 0
	for _, k := range c.lru.Keys() {
		raw, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		e := raw.(*entry)
		if !c.expired(e) {
			continue
		}
		c.removeWithReason(k.(cachekey.Key), ReasonTTL)
		removed++
	}
	if removed > 0 {
		sklog.Debugf("cache sweep removed %d expired entries", removed)
	}
}

func (c *Cache) removeWithReason(key cachekey.Key, reason string) {
	c.mu.Lock()
	c.reasonOverride = reason
	c.lru.Remove(key)
	c.reasonOverride = ""
	c.mu.Unlock()
}

// InvalidationResult summarizes one invalidation call for the HTTP
// layer's response.
type InvalidationResult struct {
	Count    int
	Patterns []string
}

// Invalidate removes a single key.
func (c *Cache) Invalidate(key cachekey.Key) InvalidationResult {
	if !c.lru.Contains(key) {
		return InvalidationResult{Count: 0, Patterns: []string{key.String()}}
	}
	c.removeWithReason(key, ReasonManual)
	return InvalidationResult{Count: 1, Patterns: []string{key.String()}}
}

// InvalidateAll removes every entry.
func (c *Cache) InvalidateAll() InvalidationResult {
	count := c.lru.Len()
	c.mu.Lock()
	c.reasonOverride = ReasonManual
	c.lru.Purge()
	c.reasonOverride = ""
	c.mu.Unlock()
	return InvalidationResult{Count: count, Patterns: []string{"*:*:*"}}
}

// InvalidateByApp removes every entry for app, any profile or label.
func (c *Cache) InvalidateByApp(app string) InvalidationResult {
	return c.InvalidateByPattern(cachekey.New(app, nil, "").App + ":*:*")
}

// InvalidateByAppProfile removes every entry for app+profile, any label.
func (c *Cache) InvalidateByAppProfile(app, profile string) InvalidationResult {
	k := cachekey.New(app, []string{profile}, "")
	return c.InvalidateByPattern(k.App + ":" + k.Profiles + ":*")
}

// InvalidateByAppProfileLabel removes exactly one entry.
func (c *Cache) InvalidateByAppProfileLabel(app, profile, label string) InvalidationResult {
	return c.Invalidate(cachekey.New(app, []string{profile}, label))
}

// InvalidateByPattern removes every entry whose stringified key
// (app:profiles:label) matches the glob pattern. An invalid pattern
// yields a zero count rather than an error, matching spec.md.
func (c *Cache) InvalidateByPattern(pattern string) InvalidationResult {
	var matched []cachekey.Key
	for _, k := range c.lru.Keys() {
		ck := k.(cachekey.Key)
		// '/' is swapped out on both sides so '*' also spans labels such
		// as "feature/x", which filepath.Match treats as a separator.
		ok, err := filepath.Match(strings.ReplaceAll(pattern, "/", "\x00"), strings.ReplaceAll(ck.String(), "/", "\x00"))
		if err != nil {
			return InvalidationResult{Count: 0, Patterns: []string{pattern}}
		}
		if ok {
			matched = append(matched, ck)
		}
	}
	for _, k := range matched {
		c.removeWithReason(k, ReasonManual)
	}
	return InvalidationResult{Count: len(matched), Patterns: []string{pattern}}
}

// InvalidateByPatterns applies InvalidateByPattern for each pattern and
// aggregates the results.
func (c *Cache) InvalidateByPatterns(patterns []string) InvalidationResult {
	total := InvalidationResult{}
	for _, p := range patterns {
		r := c.InvalidateByPattern(p)
		total.Count += r.Count
		total.Patterns = append(total.Patterns, r.Patterns...)
	}
	return total
}
