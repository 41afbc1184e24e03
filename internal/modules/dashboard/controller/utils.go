package controller

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"climatedash-server/internal/modules/dashboard/charts"
	"climatedash-server/internal/modules/dashboard/snapshot"
)

// parseChartsQuery reads the year and the repeated country parameters.
// Country names are kept verbatim (they may contain commas); no country
// parameter yields an empty, non-nil selection.
func parseChartsQuery(r *http.Request, defaultYear int) (year int, countries []string, err error) {
	q := r.URL.Query()

	year = defaultYear
	if s := q.Get("year"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, nil, errors.New("invalid 'year' (expected integer)")
		}
		year = n
	}

	countries = append([]string{}, q["country"]...)
	return year, countries, nil
}

// snapshotURLs returns the PNG URL of every chart that has a snapshot, for
// the given selection.
func snapshotURLs(year int, countries []string) map[string]string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	for _, c := range countries {
		q.Add("country", c)
	}
	enc := q.Encode()

	urls := make(map[string]string, len(charts.IDs))
	for _, id := range charts.IDs {
		if snapshot.Supported(id) {
			urls[id] = "/charts/" + id + ".png?" + enc
		}
	}
	return urls
}
