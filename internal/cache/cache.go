package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"restchat/internal/domain"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	// StatusLoading means a fetch for the entry is in flight.
	StatusLoading Status = iota
	// StatusReady means the entry holds a server-confirmed value.
	StatusReady
	// StatusError means the last fetch failed; no automatic retry happens.
	StatusError
	// StatusStale means the value is no longer trustworthy and a refetch
	// is pending the next subscription.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusStale:
		return "stale"
	}
	return "unknown"
}

// Snapshot is one observation of a cache entry.
type Snapshot struct {
	Status Status
	Value  any
	Err    error
}

// Fetcher loads the value for a key from the remote service.
type Fetcher func(ctx context.Context) (any, error)

// Cache is the process-wide resource cache.
type Cache struct {
	log *zap.Logger

	mu      sync.Mutex
	entries map[domain.ResourceKey]*entry
	group   singleflight.Group
}

// New constructs an empty cache. A nil logger disables logging.
func New(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		log:     log,
		entries: make(map[domain.ResourceKey]*entry),
	}
}

type entry struct {
	key    domain.ResourceKey
	status Status
	value  any
	err    error

	// seq is the sequence of the newest fetch allowed to apply its result.
	// Completions carrying an older sequence are discarded.
	seq      uint64
	inflight bool

	// fetcher and ctx from the most recent Read; reused for
	// invalidation-triggered refetches.
	fetcher Fetcher
	ctx     context.Context

	subs map[*Subscription]struct{}
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{Status: e.status, Value: e.value, Err: e.err}
}

// Read registers interest in key. The returned subscription immediately
// carries the entry's current snapshot and then every subsequent one, with
// delivery coalesced to the latest. If the entry is missing or stale, a
// fetch starts; if one is already in flight, the new reader shares it.
//
// Callers must Close the subscription when done.
func (c *Cache) Read(ctx context.Context, key domain.ResourceKey, fetch Fetcher) *Subscription {
	c.mu.Lock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			key:    key,
			status: StatusStale,
			subs:   make(map[*Subscription]struct{}),
		}
		c.entries[key] = e
	}
	e.fetcher = fetch
	e.ctx = ctx

	sub := &Subscription{cache: c, key: key, ch: make(chan Snapshot, 1)}
	e.subs[sub] = struct{}{}

	if e.status == StatusStale && !e.inflight {
		c.startFetchLocked(e)
	}
	sub.push(e.snapshot())

	c.mu.Unlock()
	return sub
}

// Invalidate marks key stale. With at least one active subscriber a refetch
// starts immediately; with none, the entry is dropped and the next Read
// fetches fresh.
func (c *Cache) Invalidate(key domain.ResourceKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.invalidateLocked(e)
	}
}

// InvalidateMatch invalidates every key the predicate accepts. Mutations
// use it to invalidate key families, e.g. a chat's detail both with and
// without membership.
func (c *Cache) InvalidateMatch(pred func(domain.ResourceKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if pred(key) {
			c.invalidateLocked(e)
		}
	}
}

func (c *Cache) invalidateLocked(e *entry) {
	// Supersede any in-flight fetch and forget its shared call so the
	// refetch hits the server rather than joining the stale flight.
	e.seq++
	c.group.Forget(e.key.String())
	c.log.Debug("invalidate", zap.Stringer("key", e.key), zap.Int("subscribers", len(e.subs)))

	if len(e.subs) == 0 {
		delete(c.entries, e.key)
		return
	}

	e.status = StatusStale
	c.startFetchLocked(e)
	for sub := range e.subs {
		sub.push(e.snapshot())
	}
}

func (c *Cache) startFetchLocked(e *entry) {
	e.status = StatusLoading
	e.inflight = true
	e.seq++

	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go c.fetch(ctx, e.key, e.seq, e.fetcher)
}

func (c *Cache) fetch(ctx context.Context, key domain.ResourceKey, seq uint64, fetch Fetcher) {
	value, err, shared := c.group.Do(key.String(), func() (any, error) {
		return fetch(ctx)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || seq != e.seq {
		c.log.Debug("discarding superseded fetch", zap.Stringer("key", key), zap.Uint64("seq", seq))
		return
	}

	e.inflight = false
	if err != nil {
		e.status = StatusError
		e.value = nil
		e.err = err
	} else {
		e.status = StatusReady
		e.value = value
		e.err = nil
	}
	c.log.Debug("fetch complete",
		zap.Stringer("key", key),
		zap.Stringer("status", e.status),
		zap.Bool("shared", shared),
	)
	for sub := range e.subs {
		sub.push(e.snapshot())
	}
}

// release detaches sub from its entry. Entries left with no subscribers are
// reclaimed unless they hold a live value future readers can reuse.
func (c *Cache) release(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sub.key]
	if !ok {
		return
	}
	delete(e.subs, sub)
	if len(e.subs) == 0 && e.status != StatusReady && !e.inflight {
		delete(c.entries, sub.key)
	}
}
