// Package syncache keeps the client's view of server-side resources fresh by
// polling. Each key (store collection, single store, audit log) has at most
// one poll loop, started by the first subscriber and stopped by the last, so
// concurrent readers of the same key share a single fetch. Mutations
// invalidate a key to get an eager refetch instead of waiting for the next
// tick.
package syncache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/systmms/storectl/internal/logging"
	"github.com/systmms/storectl/internal/metrics"
)

// ErrGone is returned by a FetchFunc when the entity vanished between polls,
// e.g. a store that reached DELETED and was unlisted. The cache applies it
// as an empty result, not a failure.
var ErrGone = errors.New("entity gone")

// DefaultInterval is the fixed refresh period per subscribed key. No
// backoff, no jitter: load is bounded by the number of open views, not
// request volume.
const DefaultInterval = 2 * time.Second

// FetchFunc loads the current server-side value for a key.
type FetchFunc func(ctx context.Context) (interface{}, error)

// entry holds the poll state for a single key.
type entry struct {
	key   string
	fetch FetchFunc

	subscribers int

	value      interface{}
	loaded     bool
	lastErr    error
	lastFetch  time.Time
	appliedGen uint64
	nextGen    uint64

	pollCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// Cache is the subscriber-counted polling cache. It is the only shared
// mutable resource in the client; every write goes through refresh/apply
// under one mutex, so there is effectively a single writer per key.
type Cache struct {
	interval time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	entries map[string]*entry
	updates chan string
}

// New creates a cache polling each subscribed key at the given interval.
func New(interval time.Duration, logger *logging.Logger) *Cache {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &Cache{
		interval: interval,
		logger:   logger,
		entries:  make(map[string]*entry),
		updates:  make(chan string, 64),
	}
}

// Register installs the fetch function for a key. Registering an existing
// key replaces its fetcher but keeps any cached value.
func (c *Cache) Register(key string, fetch FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.entries[key]; exists {
		e.fetch = fetch
		return
	}
	c.entries[key] = &entry{
		key:   key,
		fetch: fetch,
	}
}

// Subscribe starts polling the key (first subscriber triggers an immediate
// fetch, then the ticker). The returned cancel function drops the
// subscription; when the last one is gone the poll loop stops. The cached
// value survives for later subscribers, stale but available.
func (c *Cache) Subscribe(key string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, fmt.Errorf("no fetcher registered for key %q", key)
	}

	e.subscribers++
	if e.subscribers == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		e.pollCtx = ctx
		e.cancel = cancel
		e.done = make(chan struct{})
		go c.runPoller(ctx, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(key) })
	}, nil
}

func (c *Cache) unsubscribe(key string) {
	c.mu.Lock()
	e, exists := c.entries[key]
	if !exists || e.subscribers == 0 {
		c.mu.Unlock()
		return
	}
	e.subscribers--
	if e.subscribers > 0 {
		c.mu.Unlock()
		return
	}
	cancel := e.cancel
	done := e.done
	e.pollCtx = nil
	e.cancel = nil
	e.done = nil
	c.mu.Unlock()

	cancel()
	<-done
}

// Get returns the most recent applied value for a key. ok is false until the
// first successful fetch; after that a failed poll keeps the previous value.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists || !e.loaded {
		return nil, false
	}
	return e.value, true
}

// InitialError reports the last fetch error for a key that has never loaded.
// Once any value is cached, read errors degrade to staleness and this
// returns nil.
func (c *Cache) InitialError(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists || e.loaded {
		return nil
	}
	return e.lastErr
}

// Staleness returns how long ago the key's value was last confirmed against
// the server. Zero when the key never loaded.
func (c *Cache) Staleness(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists || e.lastFetch.IsZero() {
		return 0
	}
	return time.Since(e.lastFetch)
}

// Invalidate schedules an eager refetch for a key, used after a successful
// create or delete so the user sees the result before the next poll tick.
// The refetch runs concurrently with the poll loop; generation fencing keeps
// a slower in-flight poll from overwriting its result.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	e, exists := c.entries[key]
	if !exists {
		c.mu.Unlock()
		return
	}
	if e.subscribers == 0 {
		// Nobody is watching: drop the value so the next subscriber
		// refetches instead of seeing pre-mutation state.
		e.value = nil
		e.loaded = false
		c.mu.Unlock()
		return
	}
	ctx := e.pollCtx
	c.mu.Unlock()

	go c.refresh(ctx, e)
}

// Updates delivers change notifications for render loops. Sends are
// best-effort: if the channel is full the notification is dropped, which is
// fine because consumers re-read the whole snapshot on every wake-up.
func (c *Cache) Updates() <-chan string {
	return c.updates
}

// Close stops every poll loop.
func (c *Cache) Close() {
	c.mu.Lock()
	var waits []chan struct{}
	for _, e := range c.entries {
		if e.cancel != nil {
			e.cancel()
			waits = append(waits, e.done)
			e.subscribers = 0
			e.pollCtx = nil
			e.cancel = nil
			e.done = nil
		}
	}
	c.mu.Unlock()

	for _, done := range waits {
		<-done
	}
}

// runPoller is the per-key poll loop: immediate fetch, then one fetch per
// tick, until the key loses its last subscriber.
func (c *Cache) runPoller(ctx context.Context, e *entry) {
	defer close(e.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.refresh(ctx, e)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx, e)
		}
	}
}

// refresh performs one fetch and applies the result. Each fetch takes a
// monotonic generation before it starts; apply drops any result older than
// one already applied, so a slow response for a superseded request can never
// roll the view backwards.
func (c *Cache) refresh(ctx context.Context, e *entry) {
	if ctx == nil || ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	e.nextGen++
	gen := e.nextGen
	fetch := e.fetch
	c.mu.Unlock()

	start := time.Now()
	value, err := fetch(ctx)
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return
	}
	c.apply(e, gen, value, err, elapsed)
}

func (c *Cache) apply(e *entry, gen uint64, value interface{}, err error, elapsed time.Duration) {
	c.mu.Lock()

	if gen <= e.appliedGen {
		c.mu.Unlock()
		c.logger.Debug("dropped stale response for %s (gen %d <= %d)", e.key, gen, e.appliedGen)
		metrics.RecordPoll(e.key, "stale", elapsed.Seconds())
		return
	}
	e.appliedGen = gen

	outcome := "ok"
	changed := false
	switch {
	case err == nil:
		changed = !e.loaded || !reflect.DeepEqual(e.value, value)
		e.value = value
		e.loaded = true
		e.lastErr = nil
		e.lastFetch = time.Now()
	case errors.Is(err, ErrGone):
		// Entity removed between polls: an empty result, not an error.
		outcome = "gone"
		changed = !e.loaded || e.value != nil
		e.value = nil
		e.loaded = true
		e.lastErr = nil
		e.lastFetch = time.Now()
	default:
		// Keep the previous value, stale but available. The next tick
		// retries.
		outcome = "error"
		e.lastErr = err
	}
	key := e.key
	c.mu.Unlock()

	metrics.RecordPoll(key, outcome, elapsed.Seconds())
	if outcome == "error" {
		c.logger.Debug("poll for %s failed: %v", key, err)
		return
	}
	metrics.SetStaleness(key, 0)

	if changed {
		select {
		case c.updates <- key:
		default:
		}
	}
}
