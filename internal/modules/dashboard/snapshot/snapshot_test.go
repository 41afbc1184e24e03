package snapshot

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climatedash-server/internal/modules/dashboard/charts"
	"climatedash-server/internal/modules/dashboard/dataset"
	"climatedash-server/internal/modules/dashboard/types"
)

type noCodes struct{}

func (noCodes) Lookup(string) (string, bool) { return "", false }

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	f := null.FloatFrom
	ds, err := dataset.New(
		[]types.IndicatorRow{
			{Country: "Spain", Year: 2006, Temperature: f(15), GHGEmission: f(380), GDP: f(26000), MeatConsumption: f(108)},
			{Country: "Spain", Year: 2007, Temperature: f(16), GHGEmission: f(400), GDP: f(27000), MeatConsumption: f(110)},
			{Country: "Italy", Year: 2007, Temperature: f(14), GHGEmission: f(500), GDP: null.Float{}, MeatConsumption: f(95)},
			{Country: "Chad", Year: 2007, Temperature: f(28), GHGEmission: f(20), GDP: f(900), MeatConsumption: f(12)},
		},
		[]types.SeaGlacierRow{
			{Year: 2006, Level: f(9.0), Mass: f(-25)},
			{Year: 2007, Level: f(9.1), Mass: null.Float{}},
		},
	)
	require.NoError(t, err)
	return ds
}

func decodePNG(t *testing.T, b []byte) (w, h int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestRenderSupportedCharts(t *testing.T) {
	out := charts.Update(fixture(t), noCodes{}, 2007, []string{"Spain", "Italy", "Chad"})

	for _, id := range []string{charts.BarGraphID, charts.ScatterPlotID, charts.BubbleChartID} {
		t.Run(id, func(t *testing.T) {
			spec, ok := out.ByID(id)
			require.True(t, ok)

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, spec, 640, 360))
			w, h := decodePNG(t, buf.Bytes())
			assert.Equal(t, 640, w)
			assert.Equal(t, 360, h)
		})
	}
}

func TestRenderEmptySelection(t *testing.T) {
	out := charts.Update(fixture(t), noCodes{}, 2007, nil)
	for _, id := range []string{charts.ScatterPlotID, charts.BubbleChartID} {
		spec, _ := out.ByID(id)
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, spec, DefaultWidth, DefaultHeight), id)
		decodePNG(t, buf.Bytes())
	}
}

func TestRenderSinglePoint(t *testing.T) {
	spec := charts.ScatterPlot(fixture(t), []string{"Chad"})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, spec, DefaultWidth, DefaultHeight))
}

func TestRenderHeatMapUnsupported(t *testing.T) {
	spec := charts.HeatMap(fixture(t), noCodes{}, 2007)
	err := Render(&bytes.Buffer{}, spec, DefaultWidth, DefaultHeight)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, Supported(charts.HeatMapID))
	assert.True(t, Supported(charts.BubbleChartID))
}

func TestBubbleRadius(t *testing.T) {
	m := &charts.Marker{Size: []null.Float{null.FloatFrom(400), {}}, SizeRef: charts.BubbleSizeRef(400)}
	assert.InDelta(t, math.Sqrt(1250)/2, bubbleRadius(m, 0), 1e-9)
	assert.Equal(t, 1.0, bubbleRadius(m, 1))
	assert.Equal(t, float64(pointRadius), bubbleRadius(nil, 0))
}

func TestAxisRange(t *testing.T) {
	r := axisRange([]float64{3, 3})
	assert.Less(t, r.Min, 3.0)
	assert.Greater(t, r.Max, 3.0)

	r = axisRange(nil)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)
}
