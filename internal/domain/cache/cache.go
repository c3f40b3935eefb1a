// Package cache holds computed dashboard results in process memory for a
// fixed time-to-live. Readers see an immutable snapshot; writers copy it,
// change the copy and swap it in.
package cache

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock tells the cache what time it is
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock
var SystemClock Clock = systemClock{}

// Counter is incremented on cache hits or misses
type Counter interface {
	Inc()
}

type nopCounter struct{}

func (nopCounter) Inc() {}

// Key identifies a cached result. Every input that changes the result
// must be part of the key.
type Key struct {
	Dataset string
	View    string
	Window  string
	Filters map[string]string
}

// String renders the key with filters in sorted order. Every component is
// query-escaped so separators inside a value cannot collide with another
// key. Empty filter values are dropped so an unset filter and an absent one
// share an entry.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(url.QueryEscape(k.Dataset))
	b.WriteByte('|')
	b.WriteString(url.QueryEscape(k.View))
	b.WriteByte('|')
	b.WriteString(url.QueryEscape(k.Window))
	b.WriteByte('|')

	names := make([]string, 0, len(k.Filters))
	for name, v := range k.Filters {
		if v != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(k.Filters[name]))
	}
	return b.String()
}

type entry struct {
	value   any
	expires time.Time
}

type snapshot map[string]entry

// Cache is a TTL cache safe for concurrent use. Concurrent misses for the
// same key share one load.
type Cache struct {
	ttl   time.Duration
	clock Clock

	snap  atomic.Pointer[snapshot]
	write sync.Mutex
	group singleflight.Group
	// gen is bumped by Reset; loads started under an older gen are not stored
	gen atomic.Uint64

	hits   Counter
	misses Counter
}

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

// WithCounters counts hits and misses
func WithCounters(hits, misses Counter) Option {
	return func(cache *Cache) {
		if hits != nil {
			cache.hits = hits
		}
		if misses != nil {
			cache.misses = misses
		}
	}
}

// New creates an empty cache
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:    ttl,
		clock:  SystemClock,
		hits:   nopCounter{},
		misses: nopCounter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	empty := make(snapshot)
	c.snap.Store(&empty)
	return c
}

// Get returns a live entry
func (c *Cache) Get(key string) (any, bool) {
	e, ok := (*c.snap.Load())[key]
	if !ok || !c.clock.Now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key and drops any expired entries
func (c *Cache) Set(key string, value any) {
	c.write.Lock()
	defer c.write.Unlock()
	c.put(key, value)
}

// setIfCurrent stores value unless the cache was reset after gen was read
func (c *Cache) setIfCurrent(key string, value any, gen uint64) {
	c.write.Lock()
	defer c.write.Unlock()
	if c.gen.Load() == gen {
		c.put(key, value)
	}
}

// put must be called with c.write held
func (c *Cache) put(key string, value any) {
	now := c.clock.Now()
	current := *c.snap.Load()
	next := make(snapshot, len(current)+1)
	for k, e := range current {
		if now.Before(e.expires) {
			next[k] = e
		}
	}
	next[key] = entry{value: value, expires: now.Add(c.ttl)}
	c.snap.Store(&next)
}

// Reset drops every entry. Loads already in flight still return their
// result to their callers but do not repopulate the cache.
func (c *Cache) Reset() {
	c.write.Lock()
	defer c.write.Unlock()

	c.gen.Add(1)
	empty := make(snapshot)
	c.snap.Store(&empty)
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	now := c.clock.Now()
	n := 0
	for _, e := range *c.snap.Load() {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

// GetOrLoad returns the cached value for key or calls load to produce it.
// Errors are returned to every waiting caller and are not cached. hit
// reports whether the value came from the cache.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (any, error)) (value any, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		c.hits.Inc()
		return v, true, nil
	}
	c.misses.Inc()

	gen := c.gen.Load()
	flight := strconv.FormatUint(gen, 10) + "#" + key
	v, err, _ := c.group.Do(flight, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(key, v, gen)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}
