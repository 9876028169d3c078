package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/fire-tally-service/internal/observability"
)

// BreakerLoader wraps a Loader with a circuit breaker. After maxFailures
// consecutive failed cycles the circuit opens and Load fails fast for the
// cooldown, then allows a single probe.
type BreakerLoader struct {
	inner   Loader
	cb      *gobreaker.CircuitBreaker[*Bundle]
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewBreakerLoader creates a circuit-breaking decorator around inner.
func NewBreakerLoader(inner Loader, maxFailures int, cooldown time.Duration, metrics *observability.Metrics, logger *slog.Logger) *BreakerLoader {
	metrics.BreakerOpen.Set(0)

	cb := gobreaker.NewCircuitBreaker[*Bundle](gobreaker.Settings{
		Name:        "aicc-feeds",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures) //nolint:gosec // maxFailures is validated positive by config
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("upstream circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			if to == gobreaker.StateOpen {
				metrics.BreakerOpen.Set(1)
			} else {
				metrics.BreakerOpen.Set(0)
			}
		},
	})

	return &BreakerLoader{inner: inner, cb: cb, metrics: metrics, logger: logger}
}

// Load runs the inner Loader through the breaker.
func (b *BreakerLoader) Load(ctx context.Context) (*Bundle, error) {
	bundle, err := b.cb.Execute(func() (*Bundle, error) {
		return b.inner.Load(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &FetchError{Err: fmt.Errorf("skipping upstream fetch: %w", err)}
		}
		return nil, err
	}
	return bundle, nil
}
