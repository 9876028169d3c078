package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReferenceYear is the year every record's month/day is projected onto.
const ReferenceYear = 2023

// ErrUnparseableDate is returned when a raw SitReportDate is not a valid YYYYMMDD date.
var ErrUnparseableDate = errors.New("unparseable date")

const sitReportLayout = "20060102"

// NormalizedDate is the result of parsing one SitReportDate value.
type NormalizedDate struct {
	Calendar  time.Time
	Stacked   time.Time
	DayOfYear int
}

// NormalizeDate parses an 8-digit YYYYMMDD value into its calendar date, its
// stacked date on ReferenceYear, and the stacked day of year.
func NormalizeDate(raw string) (NormalizedDate, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 8 || !isDigits(s) {
		return NormalizedDate{}, fmt.Errorf("%w: %q is not 8 digits", ErrUnparseableDate, raw)
	}

	// time.Parse normalizes nothing: month 13 and Feb 30 are errors.
	cal, err := time.Parse(sitReportLayout, s)
	if err != nil {
		return NormalizedDate{}, fmt.Errorf("%w: %q: %v", ErrUnparseableDate, raw, err)
	}

	stacked := StackDate(cal)
	return NormalizedDate{
		Calendar:  cal,
		Stacked:   stacked,
		DayOfYear: stacked.YearDay(),
	}, nil
}

// StackDate projects t's month and day onto ReferenceYear. Feb 29 maps to
// Feb 28 when ReferenceYear is not a leap year.
func StackDate(t time.Time) time.Time {
	month, day := t.Month(), t.Day()
	if month == time.February && day == 29 && !isLeap(ReferenceYear) {
		day = 28
	}
	return time.Date(ReferenceYear, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOfYearFor returns the stacked day of year for a month and day. The date
// is built on a leap year so Feb 29 reaches StackDate instead of rolling over
// to Mar 1.
func DayOfYearFor(month time.Month, day int) int {
	return StackDate(time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)).YearDay()
}

// StackedDateForDay returns the stacked date for a 1-based day of year.
func StackedDateForDay(doy int) time.Time {
	return time.Date(ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
