package tally_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
	"github.com/couchcryptid/fire-tally-service/internal/tally"
)

// --- mocks ---

// countingLoader returns a new bundle per call, or err when set. When gate is
// non-nil each call blocks on it after signalling started.
type countingLoader struct {
	mu      sync.Mutex
	err     error
	gate    chan struct{}
	started chan struct{}
	calls   atomic.Int64
}

func (l *countingLoader) Load(ctx context.Context) (*tally.Bundle, error) {
	n := l.calls.Add(1)

	l.mu.Lock()
	err, gate, started := l.err, l.gate, l.started
	l.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return testBundle(n), nil
}

func (l *countingLoader) setErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *countingLoader) block() (started, gate chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = make(chan struct{}, 1)
	l.gate = make(chan struct{})
	return l.started, l.gate
}

func (l *countingLoader) unblock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = nil
	l.gate = nil
}

type staticBundles struct {
	bundle *tally.Bundle
	err    error
	calls  atomic.Int64
}

func (s *staticBundles) Get(context.Context) (*tally.Bundle, error) {
	s.calls.Add(1)
	return s.bundle, s.err
}

var errUpstream = errors.New("connection refused")

// --- fixtures ---

func day(season int, month time.Month, d int) time.Time {
	return time.Date(season, month, d, 0, 0, 0, 0, time.UTC)
}

func rec(season int, month time.Month, d int, zone string, acres float64) domain.Record {
	cal := day(season, month, d)
	stacked := domain.StackDate(cal)
	return domain.Record{
		SeasonYear:   season,
		CalendarDate: cal,
		StackedDate:  stacked,
		DayOfYear:    stacked.YearDay(),
		ZoneID:       zone,
		TotalAcres:   acres,
	}
}

// testBundle builds a two-season bundle whose ID encodes n.
func testBundle(n int64) *tally.Bundle {
	statewide := domain.NewDataset(domain.FeedStatewide, []domain.Record{
		rec(2019, time.August, 15, domain.AllZones, 1500),
		rec(2019, time.June, 1, domain.AllZones, 100),
		rec(2022, time.June, 1, domain.AllZones, 900),
		rec(2022, time.January, 10, domain.AllZones, 1),
	})
	zoned := domain.NewDataset(domain.FeedZoned, []domain.Record{
		rec(2019, time.June, 1, "FAS", 60),
		rec(2019, time.June, 1, "TAS", 40),
		rec(2019, time.August, 15, "FAS", 1000),
		rec(2019, time.August, 15, "TAS", 500),
		rec(2022, time.June, 2, "FAS", 900),
		rec(2022, time.June, 1, "FAS", 850),
	})
	return &tally.Bundle{
		ID:        "bundle-" + strconv.FormatInt(n, 10),
		FetchedAt: day(2024, time.July, 1),
		Statewide: statewide,
		Zoned:     zoned,
	}
}
