// Package smooth provides LOESS smoothing for tally series.
//
// Smoothing is a pure transform applied after a query: it never changes the
// number or x position of points, only their acres.
package smooth

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/fire-tally-service/internal/domain"
)

const (
	// DefaultSpan is the fraction of points in each local fit.
	DefaultSpan = 0.3
	// MinPoints is the smallest series that is smoothed. Shorter series are
	// returned unchanged.
	MinPoints = 10
)

type options struct {
	span      float64
	minPoints int
}

// Option configures Smooth.
type Option func(*options)

// WithSpan sets the neighbourhood fraction. Values outside (0, 1] are ignored.
func WithSpan(f float64) Option {
	return func(o *options) {
		if f > 0 && f <= 1 {
			o.span = f
		}
	}
}

// WithMinPoints overrides MinPoints. Values below 3 are ignored.
func WithMinPoints(n int) Option {
	return func(o *options) {
		if n >= 3 {
			o.minPoints = n
		}
	}
}

// Smooth returns a locally weighted linear regression of acres against day
// of year. Each point is refit from its nearest span*n neighbours using
// tricube weights. The input is not modified.
func Smooth(points []domain.Point, opts ...Option) []domain.Point {
	o := options{span: DefaultSpan, minPoints: MinPoints}
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]domain.Point, len(points))
	copy(out, points)
	if len(points) < o.minPoints {
		return out
	}

	n := len(points)
	k := max(int(math.Ceil(o.span*float64(n))), 3)
	k = min(k, n)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range points {
		xs[i] = float64(p.DayOfYear)
		ys[i] = p.Acres
	}

	nx := make([]float64, k)
	ny := make([]float64, k)
	nw := make([]float64, k)
	order := make([]int, n)
	for i := range points {
		for j := range order {
			order[j] = j
		}
		x0 := xs[i]
		sort.SliceStable(order, func(a, b int) bool {
			return math.Abs(xs[order[a]]-x0) < math.Abs(xs[order[b]]-x0)
		})

		maxDist := math.Abs(xs[order[k-1]] - x0)
		for j := range k {
			idx := order[j]
			nx[j] = xs[idx]
			ny[j] = ys[idx]
			nw[j] = tricube(xs[idx]-x0, maxDist)
		}

		out[i].Acres = round2(fitAt(x0, nx, ny, nw, ys[i]))
	}
	return out
}

// Series applies Smooth to every season series.
func Series(series []domain.SeasonSeries, opts ...Option) []domain.SeasonSeries {
	out := make([]domain.SeasonSeries, len(series))
	for i, s := range series {
		out[i] = domain.SeasonSeries{Season: s.Season, Points: Smooth(s.Points, opts...)}
	}
	return out
}

// fitAt evaluates the weighted regression line at x0, falling back to the
// weighted mean when the neighbourhood has no spread and to the original
// value when every weight is zero.
func fitAt(x0 float64, xs, ys, ws []float64, orig float64) float64 {
	alpha, beta := stat.LinearRegression(xs, ys, ws, false)
	if v := alpha + beta*x0; !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	if v := stat.Mean(ys, ws); !math.IsNaN(v) {
		return v
	}
	return orig
}

func tricube(d, maxDist float64) float64 {
	if maxDist == 0 {
		return 1
	}
	u := math.Abs(d) / maxDist
	if u >= 1 {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
