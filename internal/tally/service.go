package tally

import (
	"context"
	"fmt"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
)

// BundleSource supplies the current Bundle. *Cache implements it.
type BundleSource interface {
	Get(ctx context.Context) (*Bundle, error)
}

// Service is the query surface consumed by the presentation layer. Query
// arguments are validated before the cache is touched, so a bad range or
// zone never triggers an upstream fetch.
type Service struct {
	bundles BundleSource
}

// NewService creates a Service over bundles.
func NewService(bundles BundleSource) *Service {
	return &Service{bundles: bundles}
}

// StatewideSeries returns one series per season from the statewide feed,
// restricted to r.
func (s *Service) StatewideSeries(ctx context.Context, r domain.DayRange) ([]domain.SeasonSeries, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	b, err := s.bundles.Get(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := domain.FilterByDayRange(b.Statewide, r)
	if err != nil {
		return nil, err
	}
	return domain.SeasonSeriesOf(domain.GroupBySeason(ds)), nil
}

// ZoneSeries returns one series per season for a zone from the zoned feed.
// domain.AllZones sums every zone.
func (s *Service) ZoneSeries(ctx context.Context, zone string, r domain.DayRange) ([]domain.SeasonSeries, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !domain.IsKnownZone(zone) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidZone, zone)
	}
	b, err := s.bundles.Get(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := domain.FilterByDayRange(b.Zoned, r)
	if err != nil {
		return nil, err
	}
	if ds, err = domain.FilterByZone(ds, zone); err != nil {
		return nil, err
	}
	return domain.SeasonSeriesOf(domain.GroupBySeason(ds)), nil
}

// YearSeries returns one series per zone for a single season. The season
// must be in the zoned feed's season index.
func (s *Service) YearSeries(ctx context.Context, year int, r domain.DayRange) ([]domain.ZoneSeries, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	b, err := s.bundles.Get(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := domain.FilterByYear(b.Zoned, year)
	if err != nil {
		return nil, err
	}
	if ds, err = domain.FilterByDayRange(ds, r); err != nil {
		return nil, err
	}
	return domain.ZoneSeriesOf(domain.GroupByZone(ds)), nil
}

// KnownZones returns the static zone code to display name table.
func (s *Service) KnownZones() map[string]string {
	return domain.KnownZones()
}

// AvailableSeasons returns the seasons present in the current zoned data,
// ascending.
func (s *Service) AvailableSeasons(ctx context.Context) ([]int, error) {
	b, err := s.bundles.Get(ctx)
	if err != nil {
		return nil, err
	}
	return b.Seasons(), nil
}
