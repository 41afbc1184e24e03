package charts

import "github.com/guregu/null/v5"

// Chart ids double as the DOM element ids the client renders into.
const (
	HeatMapID     = "heat_map"
	BarGraphID    = "bar_graph"
	ScatterPlotID = "scatter_plot"
	BubbleChartID = "bubble_chart"
)

// IDs lists the chart ids in output order.
var IDs = [4]string{HeatMapID, BarGraphID, ScatterPlotID, BubbleChartID}

// ChartSpec is a declarative chart description shaped after Plotly's
// figure model: a list of traces plus a layout.
type ChartSpec struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Charts holds one spec per chart in the fixed order of IDs.
type Charts [4]ChartSpec

// ByID returns the chart with the given id.
func (c Charts) ByID(id string) (ChartSpec, bool) {
	for _, spec := range c {
		if spec.ID == id {
			return spec, true
		}
	}
	return ChartSpec{}, false
}

type Trace struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Mode string `json:"mode,omitempty"`

	// Point arrays are always emitted so a zero-point series encodes as []
	// rather than disappearing. Arrays a trace type does not use are null.
	X []null.Float `json:"x"`
	Y []null.Float `json:"y"`

	// Choropleth only. An invalid location keeps the row in the trace but
	// leaves it off the map.
	Locations      []null.String `json:"locations"`
	Z              []null.Float  `json:"z"`
	ZMin           *float64      `json:"zmin,omitempty"`
	ZMax           *float64      `json:"zmax,omitempty"`
	ColorScale     string        `json:"colorscale,omitempty"`
	AutoColorScale *bool         `json:"autocolorscale,omitempty"`
	ReverseScale   *bool         `json:"reversescale,omitempty"`
	ColorBar       *ColorBar     `json:"colorbar,omitempty"`

	Text      []string `json:"text,omitempty"`
	HoverText []string `json:"hovertext,omitempty"`
	Marker    *Marker  `json:"marker,omitempty"`
}

// Len reports the number of points in the trace.
func (t Trace) Len() int {
	if t.Type == TypeChoropleth {
		return len(t.Z)
	}
	return len(t.X)
}

const (
	TypeChoropleth = "choropleth"
	TypeBar        = "bar"
	TypeScatter    = "scatter"
)

type Marker struct {
	Line     *Line        `json:"line,omitempty"`
	Size     []null.Float `json:"size,omitempty"`
	SizeMode string       `json:"sizemode,omitempty"`
	SizeRef  float64      `json:"sizeref,omitempty"`
}

type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type ColorBar struct {
	TickPrefix string `json:"tickprefix"`
	Title      Title  `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

type Layout struct {
	Title        Title  `json:"title"`
	XAxis        *Axis  `json:"xaxis,omitempty"`
	YAxis        *Axis  `json:"yaxis,omitempty"`
	Geo          *Geo   `json:"geo,omitempty"`
	BarMode      string `json:"barmode,omitempty"`
	PaperBGColor string `json:"paper_bgcolor,omitempty"`
}

type Axis struct {
	Title       Title        `json:"title"`
	Type        string       `json:"type,omitempty"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

type Geo struct {
	ShowFrame      bool       `json:"showframe"`
	ShowCoastlines bool       `json:"showcoastlines"`
	Projection     Projection `json:"projection"`
}

type Projection struct {
	Type string `json:"type"`
}
