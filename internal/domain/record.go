package domain

import (
	"math"
	"time"
)

// AllZones is the sentinel zone for statewide records and "ALL" aggregates.
const AllZones = "ALL"

// MinFireSeason is the first season with daily tally reporting.
const MinFireSeason = 2004

// FeedKind identifies one of the two upstream tally feeds.
type FeedKind string

const (
	FeedStatewide FeedKind = "statewide"
	FeedZoned     FeedKind = "zoned"
)

// Record is one day's cumulative tally for one zone (or AllZones) in one season.
type Record struct {
	SeasonYear   int       `json:"season_year"`
	CalendarDate time.Time `json:"calendar_date"`
	StackedDate  time.Time `json:"stacked_date"`
	DayOfYear    int       `json:"day_of_year"`
	ZoneID       string    `json:"zone_id"`
	TotalAcres   float64   `json:"total_acres_burned"`
}

// Point is one chart point of a series: the stacked date on the x-axis and
// cumulative acres on the y-axis.
type Point struct {
	Date      time.Time `json:"date"`
	DayOfYear int       `json:"day_of_year"`
	Acres     float64   `json:"acres"`
}

// SeasonSeries is one season's ordered points.
type SeasonSeries struct {
	Season int     `json:"season"`
	Points []Point `json:"points"`
}

// ZoneSeries is one protection zone's ordered points within a season.
type ZoneSeries struct {
	Zone   string  `json:"zone"`
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Points converts records, already in display order, into chart points.
func Points(records []Record) []Point {
	points := make([]Point, len(records))
	for i, r := range records {
		points[i] = Point{Date: r.StackedDate, DayOfYear: r.DayOfYear, Acres: r.TotalAcres}
	}
	return points
}

// roundAcres rounds to two decimal places.
func roundAcres(v float64) float64 {
	return math.Round(v*100) / 100
}
