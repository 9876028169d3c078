package domain

import (
	"fmt"
	"sort"
	"time"
)

// DayRange is an inclusive day-of-year window on the stacked axis.
type DayRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// FullSeason covers every day of year.
var FullSeason = DayRange{Low: 1, High: 366}

// Validate enforces 1 <= Low <= High <= 366. Out-of-range values are
// rejected rather than clamped.
func (r DayRange) Validate() error {
	if r.Low < 1 || r.High > 366 || r.Low > r.High {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, r.Low, r.High)
	}
	return nil
}

// Contains reports whether doy falls inside the range.
func (r DayRange) Contains(doy int) bool {
	return r.Low <= doy && doy <= r.High
}

// FilterByDayRange keeps records whose day of year is inside r.
func FilterByDayRange(d Dataset, r DayRange) (Dataset, error) {
	if err := r.Validate(); err != nil {
		return Dataset{}, err
	}
	return filter(d, func(rec Record) bool { return r.Contains(rec.DayOfYear) }), nil
}

// FilterByYear keeps records from one season. The season must be in d's index.
func FilterByYear(d Dataset, year int) (Dataset, error) {
	if !d.HasSeason(year) {
		return Dataset{}, fmt.Errorf("%w: %d not in %v", ErrInvalidYear, year, d.seasons)
	}
	return filter(d, func(rec Record) bool { return rec.SeasonYear == year }), nil
}

// FilterByZone keeps records for one zone. AllZones sums TotalAcres across
// every zone for each season and day, producing one AllZones record per day.
func FilterByZone(d Dataset, zone string) (Dataset, error) {
	if !IsKnownZone(zone) {
		return Dataset{}, fmt.Errorf("%w: %q", ErrInvalidZone, zone)
	}
	if zone == AllZones {
		return aggregateZones(d), nil
	}
	return filter(d, func(rec Record) bool { return rec.ZoneID == zone }), nil
}

// GroupBySeason splits records by season, each group sorted by calendar date.
func GroupBySeason(d Dataset) map[int][]Record {
	groups := make(map[int][]Record)
	for _, r := range d.records {
		groups[r.SeasonYear] = append(groups[r.SeasonYear], r)
	}
	for _, g := range groups {
		sortByCalendarDate(g)
	}
	return groups
}

// GroupByZone splits records by zone, each group sorted by calendar date.
func GroupByZone(d Dataset) map[string][]Record {
	groups := make(map[string][]Record)
	for _, r := range d.records {
		groups[r.ZoneID] = append(groups[r.ZoneID], r)
	}
	for _, g := range groups {
		sortByCalendarDate(g)
	}
	return groups
}

// SeasonSeriesOf converts GroupBySeason output into series ordered by season.
func SeasonSeriesOf(groups map[int][]Record) []SeasonSeries {
	out := make([]SeasonSeries, 0, len(groups))
	for season, recs := range groups {
		out = append(out, SeasonSeries{Season: season, Points: Points(recs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

// ZoneSeriesOf converts GroupByZone output into series ordered by zone code.
func ZoneSeriesOf(groups map[string][]Record) []ZoneSeries {
	out := make([]ZoneSeries, 0, len(groups))
	for zone, recs := range groups {
		name, _ := ZoneName(zone)
		out = append(out, ZoneSeries{Zone: zone, Name: name, Points: Points(recs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out
}

func filter(d Dataset, keep func(Record) bool) Dataset {
	out := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return newDataset(d.feed, out)
}

// aggregateKey includes the calendar date so Feb 28 and Feb 29 of a leap
// season, which share a stacked date, stay separate.
type aggregateKey struct {
	season   int
	doy      int
	stacked  time.Time
	calendar time.Time
}

func aggregateZones(d Dataset) Dataset {
	sums := make(map[aggregateKey]float64)
	for _, r := range d.records {
		k := aggregateKey{season: r.SeasonYear, doy: r.DayOfYear, stacked: r.StackedDate, calendar: r.CalendarDate}
		sums[k] += r.TotalAcres
	}

	out := make([]Record, 0, len(sums))
	for k, total := range sums {
		out = append(out, Record{
			SeasonYear:   k.season,
			CalendarDate: k.calendar,
			StackedDate:  k.stacked,
			DayOfYear:    k.doy,
			ZoneID:       AllZones,
			TotalAcres:   roundAcres(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeasonYear != out[j].SeasonYear {
			return out[i].SeasonYear < out[j].SeasonYear
		}
		return out[i].CalendarDate.Before(out[j].CalendarDate)
	})
	return newDataset(d.feed, out)
}

func sortByCalendarDate(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CalendarDate.Before(recs[j].CalendarDate)
	})
}
