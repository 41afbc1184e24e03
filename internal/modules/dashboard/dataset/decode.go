package dataset

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"climatedash-server/internal/modules/dashboard/types"
)

var (
	indicatorKeys  = []string{"country", "year", "temperature", "ghg_emission", "gdp", "meat_consumption"}
	seaGlacierKeys = []string{"year", "level", "mass"}

	// Keys whose value may not be JSON null.
	nonNullKeys = map[string]bool{"country": true, "year": true}
)

func readIndicators(ctx context.Context, path string) ([]types.IndicatorRow, error) {
	var rows []types.IndicatorRow
	if err := readRows(ctx, path, indicatorKeys, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func readSeaGlacier(ctx context.Context, path string) ([]types.SeaGlacierRow, error) {
	var rows []types.SeaGlacierRow
	if err := readRows(ctx, path, seaGlacierKeys, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// readRows decodes path, an array of flat objects, into dst after checking
// that every row carries each of the required keys.
func readRows(ctx context.Context, path string, required []string, dst any) error {
	b, err := readFile(ctx, path)
	if err != nil {
		return err
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(b, &rows); err != nil {
		return errors.Wrapf(err, "dataset: %s is not an array of objects", path)
	}
	if rows == nil {
		return errors.Newf("dataset: %s is not an array of objects", path)
	}

	for i, obj := range rows {
		if obj == nil {
			return errors.Newf("dataset: %s row %d is not an object", path, i)
		}
		for _, k := range required {
			v, ok := obj[k]
			if !ok {
				return errors.Newf("dataset: %s row %d: missing field %q", path, i, k)
			}
			if nonNullKeys[k] && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return errors.Newf("dataset: %s row %d: field %q is null", path, i, k)
			}
		}
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Wrapf(err, "dataset: decode %s", path)
	}
	return nil
}
