// Package snapshot renders chart specs to PNG for clients that cannot run
// the browser renderer. Only the cartesian charts are supported; bars are
// drawn as connected points.
package snapshot

import (
	"io"
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/cockroachdb/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"climatedash-server/internal/modules/dashboard/charts"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 540

	pointRadius = 4
)

// ErrUnsupported is returned for charts that have no PNG rendering.
var ErrUnsupported = errors.New("snapshot: chart kind not supported")

// Supported reports whether id can be rendered by Render.
func Supported(id string) bool {
	switch id {
	case charts.BarGraphID, charts.ScatterPlotID, charts.BubbleChartID:
		return true
	}
	return false
}

// Render draws spec as a PNG of the given size into w.
func Render(w io.Writer, spec charts.ChartSpec, width, height int) error {
	if !Supported(spec.ID) {
		return errors.Wrapf(ErrUnsupported, "chart %q", spec.ID)
	}

	logX := spec.Layout.XAxis != nil && spec.Layout.XAxis.Type == "log"
	points := spec.ID != charts.BarGraphID

	var (
		series []chart.Series
		allX   []float64
		allY   []float64
	)
	for i, tr := range spec.Data {
		s, ok := toSeries(tr, i, logX, points)
		if ok {
			series = append(series, s)
			allX = append(allX, s.XValues...)
			allY = append(allY, s.YValues...)
		}
	}

	ch := chart.Chart{
		Title:      spec.Layout.Title.Text,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: axisName(spec.Layout.XAxis, logX), Range: axisRange(allX)},
		YAxis:      chart.YAxis{Name: axisName(spec.Layout.YAxis, false), Range: axisRange(allY)},
		Series:     series,
	}
	if len(series) == 0 {
		// go-chart refuses to render without series; draw an invisible
		// segment so the axes and title still render.
		ch.Series = []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
		}}
	} else {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return errors.Wrapf(err, "snapshot: render %s", spec.ID)
	}
	return nil
}

// toSeries keeps the points whose coordinates are both present. A single
// point is repeated because go-chart draws nothing for one-value series.
func toSeries(tr charts.Trace, index int, logX, points bool) (chart.ContinuousSeries, bool) {
	var xs, ys, sizes []float64
	for i := range min(len(tr.X), len(tr.Y)) {
		x, y := tr.X[i], tr.Y[i]
		if !x.Valid || !y.Valid {
			continue
		}
		xv := x.Float64
		if logX {
			if xv <= 0 {
				continue
			}
			xv = math.Log10(xv)
		}
		xs = append(xs, xv)
		ys = append(ys, y.Float64)
		sizes = append(sizes, bubbleRadius(tr.Marker, i))
	}
	if len(xs) == 0 {
		return chart.ContinuousSeries{}, false
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0])
		ys = append(ys, ys[0])
		sizes = append(sizes, sizes[0])
	}

	color := chart.GetDefaultColor(index)
	style := chart.Style{StrokeColor: color, StrokeWidth: 2}
	if points {
		style = chart.Style{
			StrokeColor: drawing.ColorTransparent,
			DotColor:    color.WithAlpha(180),
			DotWidth:    pointRadius,
		}
		if tr.Marker != nil && len(tr.Marker.Size) > 0 {
			style.DotWidthProvider = func(_, _ chart.Range, i int, _, _ float64) float64 {
				return sizes[i]
			}
		}
	}

	return chart.ContinuousSeries{Name: tr.Name, XValues: xs, YValues: ys, Style: style}, true
}

// bubbleRadius converts a marker size to a radius in pixels using area
// sizing: the diameter is sqrt(size/sizeref).
func bubbleRadius(m *charts.Marker, i int) float64 {
	if m == nil || i >= len(m.Size) || m.SizeRef <= 0 {
		return pointRadius
	}
	s := m.Size[i]
	if !s.Valid || s.Float64 <= 0 {
		return 1
	}
	return math.Max(1, math.Sqrt(s.Float64/m.SizeRef)/2)
}

func axisName(a *charts.Axis, logX bool) string {
	if a == nil {
		return ""
	}
	if logX {
		return a.Title.Text + " (log10)"
	}
	return a.Title.Text
}

// axisRange spans vs with a margin, widening degenerate ranges so go-chart
// always has a non-zero extent to draw.
func axisRange(vs []float64) *chart.ContinuousRange {
	if len(vs) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := stats.Bounds(vs)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 0.5)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
