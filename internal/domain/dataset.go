package domain

import (
	"slices"
	"sort"
	"strconv"
)

// RawTable is an upstream CSV as read: a header row and string cells.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Dataset is an immutable snapshot of valid records for one feed, with the
// sorted set of seasons present. Query functions return new Datasets and
// never modify their input.
type Dataset struct {
	feed    FeedKind
	records []Record
	seasons []int
}

// NewDataset builds a Dataset from a copy of records.
func NewDataset(feed FeedKind, records []Record) Dataset {
	return newDataset(feed, slices.Clone(records))
}

// newDataset takes ownership of records.
func newDataset(feed FeedKind, records []Record) Dataset {
	seen := make(map[int]struct{})
	seasons := make([]int, 0)
	for _, r := range records {
		if _, ok := seen[r.SeasonYear]; ok {
			continue
		}
		seen[r.SeasonYear] = struct{}{}
		seasons = append(seasons, r.SeasonYear)
	}
	sort.Ints(seasons)
	return Dataset{feed: feed, records: records, seasons: seasons}
}

// Feed returns the feed kind the dataset was built from.
func (d Dataset) Feed() FeedKind { return d.feed }

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.records) }

// Records returns a copy of the records.
func (d Dataset) Records() []Record { return slices.Clone(d.records) }

// Seasons returns the season index: distinct season years, ascending.
func (d Dataset) Seasons() []int { return slices.Clone(d.seasons) }

// HasSeason reports whether year is in the season index.
func (d Dataset) HasSeason(year int) bool {
	_, found := slices.BinarySearch(d.seasons, year)
	return found
}

// Zones returns the distinct zone codes present, sorted.
func (d Dataset) Zones() []string {
	seen := make(map[string]struct{})
	for _, r := range d.records {
		seen[r.ZoneID] = struct{}{}
	}
	zones := make([]string, 0, len(seen))
	for z := range seen {
		zones = append(zones, z)
	}
	sort.Strings(zones)
	return zones
}

// Table renders the dataset back into upstream form. Sanitizing the result
// yields an equal Dataset.
func (d Dataset) Table() RawTable {
	header := d.feed.Columns()
	rows := make([][]string, len(d.records))
	for i, r := range d.records {
		row := make([]string, 0, len(header))
		for _, col := range header {
			switch col {
			case ColSitReportDate:
				row = append(row, r.CalendarDate.Format(sitReportLayout))
			case ColFireSeason:
				row = append(row, strconv.Itoa(r.SeasonYear))
			case ColProtectionUnit:
				row = append(row, r.ZoneID)
			case ColTotalAcres:
				row = append(row, strconv.FormatFloat(r.TotalAcres, 'f', -1, 64))
			}
		}
		rows[i] = row
	}
	return RawTable{Header: header, Rows: rows}
}
