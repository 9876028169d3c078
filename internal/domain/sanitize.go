package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// WarningReason classifies why the sanitizer dropped a row or column.
type WarningReason string

const (
	ReasonUnlabeledColumn WarningReason = "unlabeled_column"
	ReasonMissingSeason   WarningReason = "missing_season"
	ReasonInvalidSeason   WarningReason = "invalid_season"
	ReasonBeforeMinSeason WarningReason = "before_min_season"
	ReasonUnparseableDate WarningReason = "unparseable_date"
	ReasonMissingZone     WarningReason = "missing_zone"
	ReasonUnknownZone     WarningReason = "unknown_zone"
	ReasonInvalidAcres    WarningReason = "invalid_acres"
)

// SanitizeWarning describes one dropped row or discarded column. Line is the
// 1-based CSV line (the header is line 1); it is 1 for column warnings.
type SanitizeWarning struct {
	Feed   FeedKind
	Line   int
	Reason WarningReason
	Value  string
}

func (w SanitizeWarning) String() string {
	return fmt.Sprintf("%s feed line %d: %s (%q)", w.Feed, w.Line, w.Reason, w.Value)
}

// Sanitize converts a raw feed table into a Dataset of valid records.
//
// Rows are dropped, never repaired: seasons before MinFireSeason, unparseable
// dates, missing or unknown zones (zoned feed), and missing, non-numeric or
// negative acres. Acres are rounded to hundredths. Columns outside the feed
// schema are ignored. Sanitize never fails as a whole; a table missing a
// required column simply yields an empty Dataset.
func Sanitize(kind FeedKind, table RawTable) (Dataset, []SanitizeWarning) {
	var warnings []SanitizeWarning

	known := kind.Columns()
	idx := make(map[string]int, len(known))
	for i, name := range table.Header {
		name = strings.TrimSpace(name)
		if IsArtifactColumn(name) {
			warnings = append(warnings, SanitizeWarning{Feed: kind, Line: 1, Reason: ReasonUnlabeledColumn, Value: name})
			continue
		}
		if !slices.Contains(known, name) {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	records := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		line := i + 2
		rec, w, ok := sanitizeRow(kind, idx, row)
		if !ok {
			w.Feed, w.Line = kind, line
			warnings = append(warnings, w)
			continue
		}
		records = append(records, rec)
	}

	return newDataset(kind, records), warnings
}

func sanitizeRow(kind FeedKind, idx map[string]int, row []string) (Record, SanitizeWarning, bool) {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	drop := func(reason WarningReason, value string) (Record, SanitizeWarning, bool) {
		return Record{}, SanitizeWarning{Reason: reason, Value: value}, false
	}

	rawSeason := cell(ColFireSeason)
	if isMissing(rawSeason) {
		return drop(ReasonMissingSeason, rawSeason)
	}
	season, err := parseSeason(rawSeason)
	if err != nil {
		return drop(ReasonInvalidSeason, rawSeason)
	}
	if season < MinFireSeason {
		return drop(ReasonBeforeMinSeason, rawSeason)
	}

	rawDate := cell(ColSitReportDate)
	date, err := NormalizeDate(rawDate)
	if err != nil {
		return drop(ReasonUnparseableDate, rawDate)
	}

	zone := AllZones
	if kind == FeedZoned {
		zone = strings.ToUpper(cell(ColProtectionUnit))
		if isMissing(zone) {
			return drop(ReasonMissingZone, zone)
		}
		if _, ok := knownZones[zone]; !ok {
			return drop(ReasonUnknownZone, zone)
		}
	}

	rawAcres := cell(ColTotalAcres)
	acres, err := strconv.ParseFloat(rawAcres, 64)
	if err != nil || math.IsNaN(acres) || math.IsInf(acres, 0) || acres < 0 {
		return drop(ReasonInvalidAcres, rawAcres)
	}

	return Record{
		SeasonYear:   season,
		CalendarDate: date.Calendar,
		StackedDate:  date.Stacked,
		DayOfYear:    date.DayOfYear,
		ZoneID:       zone,
		TotalAcres:   roundAcres(acres),
	}, SanitizeWarning{}, true
}

// parseSeason accepts "2019" and the float spelling "2019.0" that spreadsheet
// exports produce for integer columns containing blanks.
func parseSeason(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("season %q is not a whole year", s)
	}
	return int(f), nil
}

func isMissing(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "NAN", "NULL":
		return true
	}
	return false
}
