package types

import (
	"time"

	"github.com/guregu/null/v5"
)

// IndicatorRow is one country-year observation. Numeric fields are invalid
// when the source value was null.
type IndicatorRow struct {
	Country         string     `json:"country"`
	Year            int        `json:"year"`
	Temperature     null.Float `json:"temperature"`
	GHGEmission     null.Float `json:"ghg_emission"`
	GDP             null.Float `json:"gdp"`
	MeatConsumption null.Float `json:"meat_consumption"`
}

type SeaGlacierRow struct {
	Year  int        `json:"year"`
	Level null.Float `json:"level"`
	Mass  null.Float `json:"mass"`
}

// CountryCodeRow maps a country name to the ISO 3166-1 alpha-3 code used by
// the map renderer.
type CountryCodeRow struct {
	Country  string `json:"country"`
	ISOAlpha string `json:"iso_alpha"`
}

// SelectionEvent records one change of the dashboard controls.
type SelectionEvent struct {
	Year      int       `json:"year"`
	Countries []string  `json:"countries"`
	At        time.Time `json:"at"`
}
