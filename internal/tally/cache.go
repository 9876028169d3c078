package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/fire-tally-service/internal/observability"
)

const (
	defaultFetchTimeout = 30 * time.Second
	flightKey           = "bundle"
)

// State is the cache lifecycle state.
type State string

const (
	StateEmpty  State = "empty"
	StateFresh  State = "fresh"
	StateStale  State = "stale"
	StateFailed State = "failed"
)

// Status is a point-in-time view of the cache for health reporting.
type Status struct {
	State       State
	BundleID    string
	FetchedAt   time.Time
	Age         time.Duration
	LastError   error
	LastErrorAt time.Time
}

// RefreshHook is called after every successful fetch with the new bundle.
// Hooks run on their own goroutine and never delay Get.
type RefreshHook func(ctx context.Context, b *Bundle)

type entry struct {
	bundle    *Bundle
	createdAt time.Time
}

type failure struct {
	err error
	at  time.Time
}

// Cache serves the current Bundle, refreshing it from a Loader when it is
// older than the TTL.
//
// At most one fetch is in flight at a time. While the cache is empty every
// caller waits for that fetch. Once a bundle exists, a stale Get triggers a
// refresh on the calling goroutine only; concurrent callers get the stale
// bundle immediately. A failed refresh keeps the previous bundle. The current
// entry is swapped atomically, so readers never lock.
type Cache struct {
	loader  Loader
	ttl     time.Duration
	timeout time.Duration
	clock   clockwork.Clock
	hooks   []RefreshHook
	metrics *observability.Metrics
	logger  *slog.Logger

	current    atomic.Pointer[entry]
	lastErr    atomic.Pointer[failure]
	refreshing atomic.Bool
	flight     singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for TTL checks.
func WithClock(c clockwork.Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

// WithFetchTimeout bounds each fetch+sanitize cycle.
func WithFetchTimeout(d time.Duration) Option {
	return func(cache *Cache) { cache.timeout = d }
}

// WithRefreshHook registers a hook run after each successful fetch.
func WithRefreshHook(h RefreshHook) Option {
	return func(cache *Cache) { cache.hooks = append(cache.hooks, h) }
}

// NewCache creates an empty cache. Nothing is fetched until the first Get
// or Refresh.
func NewCache(loader Loader, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		loader:  loader,
		ttl:     ttl,
		timeout: defaultFetchTimeout,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached bundle. It returns a *FetchError only when no
// bundle has ever been loaded. When the cache is stale the first caller runs
// the refresh; on failure that caller also gets the stale bundle and a nil
// error, the failure is logged and recorded for Status. Use Refresh to
// observe the refresh error directly.
func (c *Cache) Get(ctx context.Context) (*Bundle, error) {
	e := c.current.Load()
	if e == nil {
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
		return c.load(ctx)
	}

	age := c.clock.Since(e.createdAt)
	if age < c.ttl {
		c.metrics.CacheLookups.WithLabelValues("fresh").Inc()
		return e.bundle, nil
	}

	c.metrics.CacheLookups.WithLabelValues("stale").Inc()
	if !c.refreshing.CompareAndSwap(false, true) {
		return e.bundle, nil
	}
	defer c.refreshing.Store(false)

	if _, err := c.load(ctx); err != nil {
		c.logger.Warn("refresh failed, serving stale data",
			"bundle_id", e.bundle.ID,
			"age", age,
			"error", err,
		)
	}
	return c.current.Load().bundle, nil
}

// Refresh fetches unconditionally and returns the fetch error, if any. The
// previous bundle is kept on failure.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err := c.load(ctx)
	return err
}

// Status reports the cache state without triggering a fetch.
func (c *Cache) Status() Status {
	var s Status
	if f := c.lastErr.Load(); f != nil {
		s.LastError = f.err
		s.LastErrorAt = f.at
	}

	e := c.current.Load()
	if e == nil {
		s.State = StateEmpty
		if s.LastError != nil {
			s.State = StateFailed
		}
		return s
	}

	s.BundleID = e.bundle.ID
	s.FetchedAt = e.bundle.FetchedAt
	s.Age = c.clock.Since(e.createdAt)
	s.State = StateFresh
	if s.Age >= c.ttl {
		s.State = StateStale
	}
	return s
}

// CheckReadiness returns nil once a bundle has been loaded.
func (c *Cache) CheckReadiness(_ context.Context) error {
	if c.current.Load() != nil {
		return nil
	}
	if f := c.lastErr.Load(); f != nil {
		return fmt.Errorf("no tally data loaded: %w", f.err)
	}
	return errors.New("no tally data loaded yet")
}

// load runs one fetch through the single-flight group. Callers that arrive
// while a fetch is in flight share its result. The fetch ignores the first
// caller's cancellation and is bounded by the fetch timeout instead.
func (c *Cache) load(ctx context.Context) (*Bundle, error) {
	ch := c.flight.DoChan(flightKey, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, &FetchError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Bundle), nil
	}
}

func (c *Cache) fetch(ctx context.Context) (*Bundle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, err := c.loader.Load(fetchCtx)
	if err != nil {
		err = asFetchError(err)
		c.lastErr.Store(&failure{err: err, at: c.clock.Now()})
		c.metrics.RefreshFailures.Inc()
		return nil, err
	}

	c.current.Store(&entry{bundle: b, createdAt: c.clock.Now()})
	c.lastErr.Store(nil)
	c.metrics.LastRefreshTimestamp.Set(float64(c.clock.Now().Unix()))

	for _, h := range c.hooks {
		go h(ctx, b)
	}
	return b, nil
}
