// Package style holds chart presentation policy for tally series: per-season
// line styles, legend policy, line shape, and titles. It has no effect on
// the data itself.
package style

import (
	"embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
)

//go:embed styles.yaml
var stylesFS embed.FS

// LineStyle is the colour and width of one trace.
type LineStyle struct {
	Color string `yaml:"color" json:"color,omitempty"`
	Width int    `yaml:"width" json:"width"`
}

// Table is the static style configuration.
type Table struct {
	Default         LineStyle         `yaml:"default"`
	OtherYearsLabel string            `yaml:"other_years_label"`
	ImportantYears  []int             `yaml:"important_years"`
	Years           map[int]LineStyle `yaml:"years"`
	ZoneWidth       int               `yaml:"zone_width"`
}

// Load parses the embedded style table.
func Load() (*Table, error) {
	data, err := stylesFS.ReadFile("styles.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded styles: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a style table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing styles: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	slices.Sort(t.ImportantYears)
	return &t, nil
}

func (t *Table) validate() error {
	if t.Default.Color == "" || t.Default.Width <= 0 {
		return errors.New("styles: default style needs a color and positive width")
	}
	for year, s := range t.Years {
		if s.Color == "" || s.Width <= 0 {
			return fmt.Errorf("styles: season %d needs a color and positive width", year)
		}
	}
	if t.OtherYearsLabel == "" {
		t.OtherYearsLabel = "Other years"
	}
	if t.ZoneWidth <= 0 {
		t.ZoneWidth = 2
	}
	return nil
}

// For returns the style for a season, or the default style.
func (t *Table) For(season int) LineStyle {
	if s, ok := t.Years[season]; ok {
		return s
	}
	return t.Default
}

// IsImportant reports whether a season gets its own legend entry.
func (t *Table) IsImportant(season int) bool {
	_, ok := slices.BinarySearch(t.ImportantYears, season)
	return ok
}

// Line is the rendered line attributes of a trace.
type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width"`
	Shape string `json:"shape"`
}

// Trace is one styled chart line.
type Trace struct {
	Name       string         `json:"name"`
	Line       Line           `json:"line"`
	ShowLegend bool           `json:"showlegend"`
	HoverSkip  bool           `json:"hover_skip,omitempty"`
	Points     []domain.Point `json:"points"`
}

// SeasonTraces styles one trace per season. Only important seasons appear
// in the legend; the rest share a single empty "Other years" legend trace
// appended at the end.
func (t *Table) SeasonTraces(series []domain.SeasonSeries, r domain.DayRange) []Trace {
	shape := LineShape(r)
	traces := make([]Trace, 0, len(series)+1)
	for _, s := range series {
		ls := t.For(s.Season)
		important := t.IsImportant(s.Season)
		traces = append(traces, Trace{
			Name:       fmt.Sprint(s.Season),
			Line:       Line{Color: ls.Color, Width: ls.Width, Shape: shape},
			ShowLegend: important,
			HoverSkip:  !important,
			Points:     s.Points,
		})
	}
	return append(traces, Trace{
		Name:       t.OtherYearsLabel,
		Line:       Line{Color: t.Default.Color, Width: t.Default.Width, Shape: shape},
		ShowLegend: true,
		Points:     []domain.Point{},
	})
}

// ZoneTraces styles one trace per zone, named by the zone's display name.
// Colours are left to the renderer.
func (t *Table) ZoneTraces(series []domain.ZoneSeries, r domain.DayRange) []Trace {
	shape := LineShape(r)
	traces := make([]Trace, 0, len(series))
	for _, s := range series {
		name := s.Name
		if name == "" {
			name = s.Zone
		}
		traces = append(traces, Trace{
			Name:       name,
			Line:       Line{Width: t.ZoneWidth, Shape: shape},
			ShowLegend: true,
			Points:     s.Points,
		})
	}
	return traces
}
