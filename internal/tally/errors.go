package tally

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
)

// ErrUpstreamUnavailable matches every FetchError via errors.Is.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// FetchError reports a failed fetch+sanitize cycle: network, TLS, malformed
// CSV, schema drift, timeout, or an open circuit breaker. Feed is empty when
// the failure is not specific to one feed.
type FetchError struct {
	Feed domain.FeedKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Feed == "" {
		return fmt.Sprintf("%s: %v", ErrUpstreamUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: %s feed: %v", ErrUpstreamUnavailable, e.Feed, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUpstreamUnavailable) hold for any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrUpstreamUnavailable }

// asFetchError wraps err in a FetchError unless it already is one.
func asFetchError(err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Err: err}
}
