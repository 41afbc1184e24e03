package dashboard

import (
	"net/http"

	"climatedash-server/internal/modules/dashboard/charts"
	"climatedash-server/internal/modules/dashboard/controller"
	"climatedash-server/internal/modules/dashboard/dataset"
)

func RegisterFeature(mux *http.ServeMux, ds *dataset.Dataset, resolver charts.CountryResolver, events controller.SelectionPublisher) {
	dashboardController := controller.NewDashboardController(ds, resolver, events)
	dashboardController.RegisterRoutes(mux)
}
