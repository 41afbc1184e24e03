// Package dataset loads the two static input documents once at startup and
// exposes them as an immutable, read-only store.
package dataset

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"golang.org/x/sync/errgroup"

	"climatedash-server/internal/modules/dashboard/types"
)

const (
	IndicatorsFile = "gdp2temp2meat2ghg.json"
	SeaGlacierFile = "sea2glaciers.json"
)

// Column names of the key table returned by Table.
const (
	ColCountry = "country"
	ColYear    = "year"
	ColRow     = "row"
)

// Dataset is never mutated after Load returns; it is safe for concurrent use.
type Dataset struct {
	indicators []types.IndicatorRow
	seaGlacier []types.SeaGlacierRow

	countries        []string
	minYear, maxYear int
	minTemp, maxTemp null.Float

	keys *table.Table
}

// LoadDir loads the indicator and sea/glacier documents from dir using their
// fixed file names.
func LoadDir(ctx context.Context, dir string) (*Dataset, error) {
	return Load(ctx, filepath.Join(dir, IndicatorsFile), filepath.Join(dir, SeaGlacierFile))
}

// Load reads both documents concurrently. Any missing file, malformed
// document or malformed row fails the whole load.
func Load(ctx context.Context, indicatorsPath, seaGlacierPath string) (*Dataset, error) {
	var (
		indicators []types.IndicatorRow
		seaGlacier []types.SeaGlacierRow
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := readIndicators(ctx, indicatorsPath)
		if err != nil {
			return err
		}
		indicators = rows
		return nil
	})
	g.Go(func() error {
		rows, err := readSeaGlacier(ctx, seaGlacierPath)
		if err != nil {
			return err
		}
		seaGlacier = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(indicators, seaGlacier)
}

// New builds a Dataset from rows already in memory. The slices are copied.
func New(indicators []types.IndicatorRow, seaGlacier []types.SeaGlacierRow) (*Dataset, error) {
	if len(indicators) == 0 {
		return nil, errors.New("dataset: no indicator rows")
	}

	ds := &Dataset{
		indicators: append([]types.IndicatorRow(nil), indicators...),
		seaGlacier: append([]types.SeaGlacierRow(nil), seaGlacier...),
		minYear:    indicators[0].Year,
		maxYear:    indicators[0].Year,
	}

	seen := make(map[string]bool)
	names := make([]string, len(ds.indicators))
	years := make([]int, len(ds.indicators))
	rowIdx := make([]int, len(ds.indicators))
	temps := make([]float64, 0, len(ds.indicators))
	for i, r := range ds.indicators {
		if !seen[r.Country] {
			seen[r.Country] = true
			ds.countries = append(ds.countries, r.Country)
		}
		ds.minYear = min(ds.minYear, r.Year)
		ds.maxYear = max(ds.maxYear, r.Year)
		if r.Temperature.Valid {
			temps = append(temps, r.Temperature.Float64)
		}
		names[i], years[i], rowIdx[i] = r.Country, r.Year, i
	}

	if len(temps) > 0 {
		lo, hi := stats.Bounds(temps)
		ds.minTemp, ds.maxTemp = null.FloatFrom(lo), null.FloatFrom(hi)
	}

	ds.keys = new(table.Builder).
		Add(ColCountry, names).
		Add(ColYear, years).
		Add(ColRow, rowIdx).
		Done()

	return ds, nil
}

func (d *Dataset) Indicators() []types.IndicatorRow {
	return append([]types.IndicatorRow(nil), d.indicators...)
}

func (d *Dataset) SeaGlacier() []types.SeaGlacierRow {
	return append([]types.SeaGlacierRow(nil), d.seaGlacier...)
}

// Indicator returns the i-th indicator row, as referenced by the row column
// of Table.
func (d *Dataset) Indicator(i int) types.IndicatorRow {
	return d.indicators[i]
}

func (d *Dataset) Len() int { return len(d.indicators) }

// Countries returns the distinct country names in first-appearance order.
func (d *Dataset) Countries() []string {
	return append([]string(nil), d.countries...)
}

func (d *Dataset) YearRange() (minYear, maxYear int) {
	return d.minYear, d.maxYear
}

// TemperatureBounds returns the global temperature range over every
// indicator row. Both values are invalid when no row has a temperature.
func (d *Dataset) TemperatureBounds() (lo, hi null.Float) {
	return d.minTemp, d.maxTemp
}

// Table returns a columnar view over the indicator keys (country, year, row
// index). Tables are immutable, so the same value is shared by all callers.
func (d *Dataset) Table() *table.Table {
	return d.keys
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: read %s", path)
	}
	return b, nil
}
