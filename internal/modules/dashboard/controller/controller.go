package controller

import (
	"net/http"

	"climatedash-server/internal/modules/dashboard/charts"
	"climatedash-server/internal/modules/dashboard/dataset"
	"climatedash-server/internal/modules/dashboard/layout"
	"climatedash-server/internal/modules/dashboard/types"
)

type DashboardController interface {
	RegisterRoutes(mux *http.ServeMux)
}

// SelectionPublisher receives every successfully served chart selection.
type SelectionPublisher interface {
	PublishSelection(ev types.SelectionEvent)
}

type dashboardControllerImpl struct {
	dataset  *dataset.Dataset
	resolver charts.CountryResolver
	page     layout.Page
	events   SelectionPublisher
}

// NewDashboardController wires the handlers to a loaded dataset. events may
// be nil when selection publishing is disabled.
func NewDashboardController(ds *dataset.Dataset, resolver charts.CountryResolver, events SelectionPublisher) DashboardController {
	return &dashboardControllerImpl{
		dataset:  ds,
		resolver: resolver,
		page:     layout.Build(ds),
		events:   events,
	}
}

func (c *dashboardControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("GET /api/v1/charts", c.handleCharts)
	mux.HandleFunc("GET /api/v1/controls", c.handleControls)
	mux.HandleFunc("GET /charts/{file}", c.handleSnapshot)
}
