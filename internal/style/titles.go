package style

import (
	"fmt"
	"time"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
)

const (
	ShapeSpline = "spline"
	ShapeLine   = "line"

	// splineMaxZoom is the widest range, in days, drawn with straight lines.
	splineMaxZoom = 90

	spanSeparator = "—"
)

// DefaultDayRange is April 1 through September 16.
var DefaultDayRange = domain.DayRange{
	Low:  domain.DayOfYearFor(time.April, 1),
	High: domain.DayOfYearFor(time.September, 16),
}

// LineShape returns ShapeSpline for ranges wider than 90 days and ShapeLine
// otherwise, so zoomed-in charts are not interpolated.
func LineShape(r domain.DayRange) string {
	if r.High-r.Low > splineMaxZoom {
		return ShapeSpline
	}
	return ShapeLine
}

// DateSpan renders a day range as "April 1—September 16".
func DateSpan(r domain.DayRange) string {
	return dayLabel(r.Low) + spanSeparator + dayLabel(r.High)
}

// StatewideTitle is the title of the statewide chart.
func StatewideTitle(r domain.DayRange) string {
	return fmt.Sprintf("Alaska Statewide Daily Tally Records, %d-Present, %s", domain.MinFireSeason, DateSpan(r))
}

// ZoneTitle is the title of a protection zone chart.
func ZoneTitle(zone string, r domain.DayRange) string {
	name, ok := domain.ZoneName(zone)
	if !ok {
		name = zone
	}
	return fmt.Sprintf("Daily Tally Records, %s, %d-Present, %s", name, domain.MinFireSeason, DateSpan(r))
}

// YearTitle is the title of the by-zone chart for one season.
func YearTitle(year int, r domain.DayRange) string {
	return fmt.Sprintf("Daily Tally Records by Protection Area, %d, %s", year, DateSpan(r))
}

// dayLabel names a stacked day. Day 366 only exists in leap years and is
// shown as December 31.
func dayLabel(doy int) string {
	d := domain.StackedDateForDay(doy)
	if d.Year() > domain.ReferenceYear {
		d = time.Date(domain.ReferenceYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return fmt.Sprintf("%s %d", d.Month(), d.Day())
}
