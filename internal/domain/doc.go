// Package domain models the Alaska Interagency Coordination Center (AICC)
// daily wildfire tally feeds and the query surface built on top of them.
//
// # Data Source
//
// AICC publishes two cumulative daily tallies as CSV, both covering 2004 to
// present:
//
//	Statewide:       "Alaska Daily Stats - 2004 to Present.csv"
//	By protection:   "Alaska Daily Stats by Protection-2004 to Present.csv"
//
// Each row is one situation report (SitReport) day. The statewide feed has one
// row per day; the protection feed has one row per day per protection zone.
//
// # AICC Data Conventions
//
// Date format:
//
//	SitReportDate is an 8-digit YYYYMMDD integer, e.g. 20190815.
//	Rows with impossible dates (20240230) occasionally appear and are dropped.
//
// Season:
//
//	FireSeason is the calendar year of the report. Daily tallies began in
//	2004; earlier seasons are backfilled annual totals and are excluded.
//
// Acres:
//
//	TotalAcres is cumulative acres burned for the season so far. Upstream
//	sometimes emits excess float precision; values are rounded to hundredths.
//
// Zones:
//
//	ProtectionUnit holds a three-letter protection zone code (FAS = Fairbanks
//	Area, TNF = Tongass National Forest, ...). The statewide feed has no zone
//	column; its records carry the sentinel zone [AllZones].
//
// Spreadsheet exports regularly add trailing unlabeled columns ("Unnamed: 12"
// when read by pandas, blank headers otherwise). Those are discarded along
// with every other column outside the feed schema.
//
// # Stacked Dates
//
// To overlay seasons on one x-axis, every record's month/day is projected onto
// [ReferenceYear]. The reference year is non-leap, so Feb 29 is stacked onto
// Feb 28. DayOfYear is always derived from the stacked date, so Aug 15 is day
// 227 in every season regardless of leap years.
package domain
