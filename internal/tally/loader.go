package tally

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
	"github.com/couchcryptid/fire-tally-service/internal/observability"
)

// Source retrieves one raw upstream feed.
type Source interface {
	FetchTable(ctx context.Context, feed domain.FeedKind) (domain.RawTable, error)
}

// Loader performs one complete fetch+sanitize cycle.
type Loader interface {
	Load(ctx context.Context) (*Bundle, error)
}

// Bundle is the cached unit: both feeds' datasets from one fetch cycle.
// A Bundle is never modified after construction.
type Bundle struct {
	ID        string
	FetchedAt time.Time
	Statewide domain.Dataset
	Zoned     domain.Dataset
}

// Seasons returns the season index of the zoned dataset.
func (b *Bundle) Seasons() []int { return b.Zoned.Seasons() }

// FeedLoader fetches both feeds concurrently, checks their schema, and
// sanitizes them into a Bundle.
type FeedLoader struct {
	source  Source
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFeedLoader creates a FeedLoader. Pass nil clock for real time.
func NewFeedLoader(source Source, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *FeedLoader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FeedLoader{source: source, clock: clock, metrics: metrics, logger: logger}
}

// Load fetches and sanitizes both feeds. Any feed failure fails the whole
// cycle with a FetchError; row-level problems never do.
func (l *FeedLoader) Load(ctx context.Context) (*Bundle, error) {
	var statewide, zoned domain.Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ds, err := l.loadFeed(gctx, domain.FeedStatewide)
		statewide = ds
		return err
	})
	g.Go(func() error {
		ds, err := l.loadFeed(gctx, domain.FeedZoned)
		zoned = ds
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Bundle{
		ID:        uuid.NewString(),
		FetchedAt: l.clock.Now(),
		Statewide: statewide,
		Zoned:     zoned,
	}
	l.logger.Info("tally data loaded",
		"bundle_id", b.ID,
		"statewide_records", statewide.Len(),
		"zoned_records", zoned.Len(),
		"seasons", len(b.Seasons()),
	)
	return b, nil
}

func (l *FeedLoader) loadFeed(ctx context.Context, feed domain.FeedKind) (domain.Dataset, error) {
	table, err := l.source.FetchTable(ctx, feed)
	if err != nil {
		return domain.Dataset{}, &FetchError{Feed: feed, Err: err}
	}
	if err := domain.CheckSchema(feed, table.Header); err != nil {
		return domain.Dataset{}, &FetchError{Feed: feed, Err: err}
	}

	ds, warnings := domain.Sanitize(feed, table)
	l.reportWarnings(feed, warnings)
	l.metrics.DatasetRows.WithLabelValues(string(feed)).Set(float64(ds.Len()))
	return ds, nil
}

func (l *FeedLoader) reportWarnings(feed domain.FeedKind, warnings []domain.SanitizeWarning) {
	if len(warnings) == 0 {
		return
	}
	byReason := make(map[domain.WarningReason]int)
	for _, w := range warnings {
		byReason[w.Reason]++
		l.metrics.RowsDropped.WithLabelValues(string(feed), string(w.Reason)).Inc()
		l.logger.Debug("sanitize warning",
			"feed", feed,
			"line", w.Line,
			"reason", w.Reason,
			"value", w.Value,
		)
	}

	attrs := make([]any, 0, 2+2*len(byReason))
	attrs = append(attrs, "feed", feed)
	for reason, n := range byReason {
		attrs = append(attrs, string(reason), n)
	}
	l.logger.Info("sanitize dropped rows or columns", attrs...)
}
