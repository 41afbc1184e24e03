// Package charts computes the four dashboard chart specs from the dataset and
// the current control values.
package charts

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aclements/go-gg/table"
	"github.com/guregu/null/v5"
	"github.com/hashicorp/go-set/v2"

	"climatedash-server/internal/modules/dashboard/dataset"
)

const (
	paperBackground = "#f9f9f9"

	bubbleSizeMax = 50
)

// CountryResolver maps a country name to an ISO alpha-3 map location.
type CountryResolver interface {
	Lookup(country string) (iso string, ok bool)
}

// Update builds the heat map, bar graph, scatter plot and bubble chart for
// year and countries. It does no I/O and never mutates ds. Country names are
// not validated; unknown names produce empty series.
func Update(ds *dataset.Dataset, resolver CountryResolver, year int, countries []string) Charts {
	return Charts{
		HeatMap(ds, resolver, year),
		BarGraph(ds),
		ScatterPlot(ds, countries),
		BubbleChart(ds, countries),
	}
}

// HeatMap is the choropleth of temperature by country for one year. The
// colour range is the global temperature range so it stays fixed while the
// year changes.
func HeatMap(ds *dataset.Dataset, resolver CountryResolver, year int) ChartSpec {
	rows := rowsOf(table.FilterEq(ds.Table(), dataset.ColYear, year))

	tr := Trace{
		Type:           TypeChoropleth,
		Locations:      make([]null.String, 0, len(rows)),
		Z:              make([]null.Float, 0, len(rows)),
		Text:           make([]string, 0, len(rows)),
		ColorScale:     "Reds",
		AutoColorScale: ptr(false),
		ReverseScale:   ptr(false),
		Marker:         &Marker{Line: &Line{Color: "darkgray", Width: 0.5}},
		ColorBar:       &ColorBar{TickPrefix: "C", Title: Title{Text: "Temperature C"}},
	}
	for _, i := range rows {
		r := ds.Indicator(i)
		loc := null.String{}
		if iso, ok := resolver.Lookup(r.Country); ok {
			loc = null.StringFrom(iso)
		}
		tr.Locations = append(tr.Locations, loc)
		tr.Z = append(tr.Z, r.Temperature)
		tr.Text = append(tr.Text, r.Country)
	}
	if lo, hi := ds.TemperatureBounds(); lo.Valid && hi.Valid {
		tr.ZMin, tr.ZMax = ptr(lo.Float64), ptr(hi.Float64)
	}

	return ChartSpec{
		ID:   HeatMapID,
		Data: []Trace{tr},
		Layout: Layout{
			Title: Title{Text: fmt.Sprintf("%d Average temperature by country", year)},
			Geo: &Geo{
				ShowFrame:      false,
				ShowCoastlines: false,
				Projection:     Projection{Type: "natural earth"},
			},
		},
	}
}

// BarGraph stacks sea level and glacier mass over the full time series. It
// depends on neither control.
func BarGraph(ds *dataset.Dataset) ChartSpec {
	sg := ds.SeaGlacier()
	years := make([]null.Float, len(sg))
	level := make([]null.Float, len(sg))
	mass := make([]null.Float, len(sg))
	for i, r := range sg {
		years[i] = null.FloatFrom(float64(r.Year))
		level[i] = r.Level
		mass[i] = r.Mass
	}

	return ChartSpec{
		ID: BarGraphID,
		Data: []Trace{
			{Type: TypeBar, Name: "Sea level", X: years, Y: level},
			{Type: TypeBar, Name: "Glacier Mass", X: slices.Clone(years), Y: mass},
		},
		Layout: Layout{
			Title:        Title{Text: "Glacier Mass vs Sea level by years"},
			XAxis:        &Axis{Title: Title{Text: "Year"}, RangeSlider: &RangeSlider{Visible: true}},
			YAxis:        &Axis{Title: Title{Text: "Inches"}},
			BarMode:      "stack",
			PaperBGColor: paperBackground,
		},
	}
}

// ScatterPlot emits one marker series per requested country, in request
// order, pairing GHG emissions with temperature across all years.
func ScatterPlot(ds *dataset.Dataset, countries []string) ChartSpec {
	data := make([]Trace, 0, len(countries))
	for _, c := range countries {
		rows := rowsOf(table.FilterEq(ds.Table(), dataset.ColCountry, c))
		tr := Trace{
			Type: TypeScatter,
			Name: c,
			Mode: "markers",
			X:    make([]null.Float, 0, len(rows)),
			Y:    make([]null.Float, 0, len(rows)),
		}
		for _, i := range rows {
			r := ds.Indicator(i)
			tr.X = append(tr.X, r.GHGEmission)
			tr.Y = append(tr.Y, r.Temperature)
		}
		data = append(data, tr)
	}

	return ChartSpec{
		ID:   ScatterPlotID,
		Data: data,
		Layout: Layout{
			Title:        Title{Text: "Temperature and GHG emissions"},
			XAxis:        &Axis{Title: Title{Text: "GHG emissions"}},
			YAxis:        &Axis{Title: Title{Text: "Temperature"}},
			PaperBGColor: paperBackground,
		},
	}
}

// BubbleChart plots GDP against meat consumption for the selected countries,
// sized by GHG emissions and grouped into one series per country in the
// order the countries first appear in the data.
func BubbleChart(ds *dataset.Dataset, countries []string) ChartSpec {
	selected := set.From(countries)
	filtered := table.Filter(ds.Table(), func(c string) bool {
		return selected.Contains(c)
	}, dataset.ColCountry)

	groups := table.GroupBy(filtered, dataset.ColCountry)
	var byCountry [][]int
	for _, gid := range groups.Tables() {
		rows := groups.Table(gid).MustColumn(dataset.ColRow).([]int)
		if len(rows) > 0 {
			byCountry = append(byCountry, rows)
		}
	}
	slices.SortFunc(byCountry, func(a, b []int) int {
		return cmp.Compare(a[0], b[0])
	})

	maxSize := 0.0
	data := make([]Trace, 0, len(byCountry))
	for _, rows := range byCountry {
		name := ds.Indicator(rows[0]).Country
		tr := Trace{
			Type:      TypeScatter,
			Name:      name,
			Mode:      "markers",
			X:         make([]null.Float, len(rows)),
			Y:         make([]null.Float, len(rows)),
			HoverText: make([]string, len(rows)),
			Marker:    &Marker{Size: make([]null.Float, len(rows)), SizeMode: "area"},
		}
		for j, i := range rows {
			r := ds.Indicator(i)
			tr.X[j] = r.GDP
			tr.Y[j] = r.MeatConsumption
			tr.HoverText[j] = r.Country
			tr.Marker.Size[j] = r.GHGEmission
			if r.GHGEmission.Valid {
				maxSize = max(maxSize, r.GHGEmission.Float64)
			}
		}
		data = append(data, tr)
	}

	ref := BubbleSizeRef(maxSize)
	for _, tr := range data {
		tr.Marker.SizeRef = ref
	}

	return ChartSpec{
		ID:   BubbleChartID,
		Data: data,
		Layout: Layout{
			Title: Title{Text: "Meat consumption GDP and GHG emissions (Size of bubble = GHG emissions)"},
			XAxis: &Axis{Title: Title{Text: "GDP"}, Type: "log"},
			YAxis: &Axis{Title: Title{Text: "Meat Consumption"}},
		},
	}
}

// BubbleSizeRef scales marker areas so the largest bubble has a diameter of
// bubbleSizeMax pixels. Non-positive maxima fall back to 1.
func BubbleSizeRef(maxSize float64) float64 {
	if maxSize <= 0 {
		return 1
	}
	return 2 * maxSize / (bubbleSizeMax * bubbleSizeMax)
}

// rowsOf returns the dataset row indices left in g, in dataset order.
func rowsOf(g table.Grouping) []int {
	t := table.Flatten(g)
	if t == nil || t.Len() == 0 {
		return nil
	}
	return t.MustColumn(dataset.ColRow).([]int)
}

func ptr[T any](v T) *T { return &v }
