package tally_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-tally-service/internal/observability"
	"github.com/couchcryptid/fire-tally-service/internal/tally"
)

const testTTL = 12 * time.Hour

func newTestCache(loader tally.Loader, opts ...tally.Option) (*tally.Cache, *clockwork.FakeClock, *observability.Metrics) {
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	opts = append([]tally.Option{tally.WithClock(clock)}, opts...)
	return tally.NewCache(loader, testTTL, metrics, slog.Default(), opts...), clock, metrics
}

func TestCache_Get_WithinTTLFetchesOnce(t *testing.T) {
	loader := &countingLoader{}
	cache, clock, metrics := newTestCache(loader)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	clock.Advance(testTTL - time.Minute)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), loader.calls.Load())
	assert.Same(t, first, second)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("fresh")), 0)
}

func TestCache_Get_RefreshesAfterTTL(t *testing.T) {
	loader := &countingLoader{}
	cache, clock, _ := newTestCache(loader)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	clock.Advance(testTTL)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), loader.calls.Load())
	assert.Equal(t, "bundle-1", first.ID)
	assert.Equal(t, "bundle-2", second.ID)
	assert.Equal(t, tally.StateFresh, cache.Status().State)
}

func TestCache_Get_ServesStaleBundleWhenRefreshFails(t *testing.T) {
	loader := &countingLoader{}
	cache, clock, metrics := newTestCache(loader)
	ctx := context.Background()

	good, err := cache.Get(ctx)
	require.NoError(t, err)

	loader.setErr(errUpstream)
	clock.Advance(testTTL + time.Hour)

	for range 3 {
		got, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Same(t, good, got)
	}
	assert.Equal(t, int64(4), loader.calls.Load(), "each stale Get retries")

	status := cache.Status()
	assert.Equal(t, tally.StateStale, status.State)
	assert.Equal(t, good.ID, status.BundleID)
	require.Error(t, status.LastError)
	assert.ErrorIs(t, status.LastError, tally.ErrUpstreamUnavailable)
	assert.ErrorIs(t, status.LastError, errUpstream)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RefreshFailures), 0)
	require.NoError(t, cache.CheckReadiness(ctx))

	loader.setErr(nil)
	fresh, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, good, fresh)
	assert.Equal(t, tally.StateFresh, cache.Status().State)
	assert.NoError(t, cache.Status().LastError)
}

func TestCache_Get_EmptyCacheSurfacesFetchError(t *testing.T) {
	loader := &countingLoader{err: errUpstream}
	cache, _, _ := newTestCache(loader)
	ctx := context.Background()

	assert.Equal(t, tally.StateEmpty, cache.Status().State)

	b, err := cache.Get(ctx)
	require.Error(t, err)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, tally.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errUpstream)

	var fe *tally.FetchError
	require.ErrorAs(t, err, &fe)

	assert.Equal(t, tally.StateFailed, cache.Status().State)
	assert.Error(t, cache.CheckReadiness(ctx))

	// Failed retries on every Get and recovers on the first success.
	_, err = cache.Get(ctx)
	require.Error(t, err)
	loader.setErr(nil)
	b, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, int64(3), loader.calls.Load())
	assert.NoError(t, cache.CheckReadiness(ctx))
}

func TestCache_Get_ConcurrentMissFetchesOnce(t *testing.T) {
	loader := &countingLoader{}
	started, gate := loader.block()
	cache, _, _ := newTestCache(loader)
	ctx := context.Background()

	const callers = 10
	var wg sync.WaitGroup
	results := make([]*tally.Bundle, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = cache.Get(ctx)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = cache.Get(ctx)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), loader.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestCache_Get_StaleCallersDoNotWaitForRefresh(t *testing.T) {
	loader := &countingLoader{}
	cache, clock, _ := newTestCache(loader)
	ctx := context.Background()

	old, err := cache.Get(ctx)
	require.NoError(t, err)

	started, gate := loader.block()
	clock.Advance(testTTL)

	refreshed := make(chan *tally.Bundle, 1)
	go func() {
		b, _ := cache.Get(ctx)
		refreshed <- b
	}()
	<-started

	for range 5 {
		got, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Same(t, old, got)
	}

	close(gate)
	select {
	case b := <-refreshed:
		assert.NotSame(t, old, b)
	case <-time.After(time.Second):
		t.Fatal("refreshing caller did not return")
	}
	assert.Equal(t, int64(2), loader.calls.Load())
	loader.unblock()
}

func TestCache_Refresh_ReturnsErrorAndKeepsBundle(t *testing.T) {
	loader := &countingLoader{}
	cache, _, _ := newTestCache(loader)
	ctx := context.Background()

	good, err := cache.Get(ctx)
	require.NoError(t, err)

	loader.setErr(errUpstream)
	err = cache.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, tally.ErrUpstreamUnavailable)
	assert.ErrorIs(t, cache.Status().LastError, errUpstream)

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, good, got)
}

func TestCache_FetchTimeout(t *testing.T) {
	loader := &countingLoader{}
	loader.block()
	cache, _, _ := newTestCache(loader, tally.WithFetchTimeout(20*time.Millisecond))

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, tally.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_Get_CallerCancellation(t *testing.T) {
	loader := &countingLoader{}
	_, gate := loader.block()
	defer close(gate)
	cache, _, _ := newTestCache(loader)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := cache.Get(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, tally.ErrUpstreamUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCache_RefreshHookReceivesBundle(t *testing.T) {
	hooked := make(chan *tally.Bundle, 1)
	loader := &countingLoader{}
	cache, _, _ := newTestCache(loader, tally.WithRefreshHook(func(_ context.Context, b *tally.Bundle) {
		hooked <- b
	}))

	b, err := cache.Get(context.Background())
	require.NoError(t, err)

	select {
	case got := <-hooked:
		assert.Same(t, b, got)
	case <-time.After(time.Second):
		t.Fatal("refresh hook not called")
	}
}

func TestCache_Status_Fresh(t *testing.T) {
	loader := &countingLoader{}
	cache, clock, _ := newTestCache(loader)

	b, err := cache.Get(context.Background())
	require.NoError(t, err)
	clock.Advance(time.Hour)

	status := cache.Status()
	assert.Equal(t, tally.StateFresh, status.State)
	assert.Equal(t, b.ID, status.BundleID)
	assert.Equal(t, b.FetchedAt, status.FetchedAt)
	assert.Equal(t, time.Hour, status.Age)
	assert.NoError(t, status.LastError)
}
