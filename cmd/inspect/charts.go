package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
	"github.com/couchcryptid/fire-tally-service/internal/smooth"
	"github.com/couchcryptid/fire-tally-service/internal/style"
)

// chart is the printed form of one view.
type chart struct {
	Title  string          `json:"title"`
	Range  domain.DayRange `json:"range"`
	Traces []style.Trace   `json:"traces"`
}

func newStatewideCmd(build func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "statewide",
		Short: "Print statewide series, one trace per season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(cmd)
			if err != nil {
				return err
			}
			r := a.opts.dayRange()
			series, err := a.svc.StatewideSeries(cmd.Context(), r)
			if err != nil {
				return err
			}
			if a.opts.smooth {
				series = smooth.Series(series)
			}
			return a.print(chart{
				Title:  style.StatewideTitle(r),
				Range:  r,
				Traces: a.styles.SeasonTraces(series, r),
			})
		},
	}
}

func newZoneCmd(build func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "zone CODE",
		Short: "Print one protection zone's series, one trace per season (ALL sums every zone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(cmd)
			if err != nil {
				return err
			}
			r := a.opts.dayRange()
			series, err := a.svc.ZoneSeries(cmd.Context(), args[0], r)
			if err != nil {
				return err
			}
			if a.opts.smooth {
				series = smooth.Series(series)
			}
			return a.print(chart{
				Title:  style.ZoneTitle(args[0], r),
				Range:  r,
				Traces: a.styles.SeasonTraces(series, r),
			})
		},
	}
}

func newYearCmd(build func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "year SEASON",
		Short: "Print one season's series, one trace per protection zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid season %q: %w", args[0], err)
			}
			a, err := build(cmd)
			if err != nil {
				return err
			}
			r := a.opts.dayRange()
			series, err := a.svc.YearSeries(cmd.Context(), year, r)
			if err != nil {
				return err
			}
			return a.print(chart{
				Title:  style.YearTitle(year, r),
				Range:  r,
				Traces: a.styles.ZoneTraces(series, r),
			})
		},
	}
}

func (a *app) print(c chart) error {
	if a.opts.format == formatText {
		return writeText(a.out, c)
	}
	return writeJSON(a.out, c)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeText prints the title and the last point of each trace.
func writeText(w io.Writer, c chart) error {
	p := message.NewPrinter(language.English)
	if _, err := p.Fprintln(w, c.Title); err != nil {
		return err
	}
	for _, t := range c.Traces {
		if len(t.Points) == 0 {
			continue
		}
		last := t.Points[len(t.Points)-1]
		if _, err := p.Fprintf(w, "%-24s %16.2f acres  %s %d\n", t.Name, last.Acres, last.Date.Month(), last.Date.Day()); err != nil {
			return err
		}
	}
	return nil
}
