// Package countrycodes maps dashboard country names to the ISO alpha-3 codes
// the choropleth plots by.
package countrycodes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/biter777/countries"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"climatedash-server/internal/modules/dashboard/types"
)

type MatchMode string

const (
	// MatchExact consults only the reference table.
	MatchExact MatchMode = "exact"
	// MatchISO falls back to ISO 3166 names and codes.
	MatchISO MatchMode = "iso"
	// MatchFuzzy additionally accepts close misspellings of ISO names.
	MatchFuzzy MatchMode = "fuzzy"
)

const (
	FuzzyMatchThreshold = 0.85

	fuzzyCacheSize = 1000
	fuzzyCacheTTL  = time.Hour
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch m := MatchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case MatchExact, MatchISO, MatchFuzzy:
		return m, nil
	default:
		return "", errors.Newf("unknown country match mode %q", s)
	}
}

// Table is the immutable reference lookup, keyed by country name exactly as
// spelled in the reference data.
type Table struct {
	codes map[string]string
}

func NewTable(rows []types.CountryCodeRow) *Table {
	t := &Table{codes: make(map[string]string, len(rows))}
	for _, r := range rows {
		t.codes[r.Country] = r.ISOAlpha
	}
	return t
}

func (t *Table) Len() int { return len(t.codes) }

func (t *Table) Lookup(country string) (string, bool) {
	iso, ok := t.codes[country]
	return iso, ok
}

// Resolver looks a country up in the reference table and, depending on its
// mode, in the ISO 3166 list. It is safe for concurrent use.
type Resolver struct {
	table *Table
	mode  MatchMode

	namesOnce sync.Once
	names     []isoName
	cache     *expirable.LRU[string, string]
}

type isoName struct {
	lower string
	code  countries.CountryCode
}

func NewResolver(table *Table, mode MatchMode) *Resolver {
	r := &Resolver{table: table, mode: mode}
	if mode == MatchFuzzy {
		r.cache = expirable.NewLRU[string, string](fuzzyCacheSize, nil, fuzzyCacheTTL)
	}
	return r
}

func (r *Resolver) Mode() MatchMode { return r.mode }

// Lookup never fails; ok is false when no mode-permitted source knows the
// country.
func (r *Resolver) Lookup(country string) (iso string, ok bool) {
	if iso, ok := r.table.Lookup(country); ok {
		return iso, true
	}
	if r.mode == MatchExact {
		return "", false
	}

	name := strings.TrimSpace(country)
	if name == "" {
		return "", false
	}
	if c := countries.ByName(name); c != countries.Unknown {
		return c.Alpha3(), true
	}
	if r.mode != MatchFuzzy {
		return "", false
	}

	if cached, hit := r.cache.Get(name); hit {
		return cached, cached != ""
	}
	iso = r.fuzzy(name)
	r.cache.Add(name, iso)
	return iso, iso != ""
}

// fuzzy returns the alpha-3 code of the ISO name with the highest
// Jaro-Winkler similarity, or "" when none reaches the threshold.
func (r *Resolver) fuzzy(name string) string {
	r.namesOnce.Do(func() {
		all := countries.All()
		r.names = make([]isoName, 0, len(all))
		for _, c := range all {
			if c == countries.Unknown {
				continue
			}
			r.names = append(r.names, isoName{lower: strings.ToLower(c.Info().Name), code: c})
		}
	})

	lower := strings.ToLower(name)
	metric := metrics.NewJaroWinkler()
	best, bestScore := countries.Unknown, 0.0
	for _, n := range r.names {
		if score := strutil.Similarity(lower, n.lower, metric); score > bestScore {
			best, bestScore = n.code, score
		}
	}
	if bestScore < FuzzyMatchThreshold || best == countries.Unknown {
		return ""
	}
	return best.Alpha3()
}

// Load reads the reference rows from repo and builds a resolver over them.
func Load(ctx context.Context, repo Repository, mode MatchMode) (*Resolver, error) {
	rows, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("country code table is empty")
	}
	return NewResolver(NewTable(rows), mode), nil
}
