package controller

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"climatedash-server/internal/metrics"
	"climatedash-server/internal/modules/dashboard/charts"
	"climatedash-server/internal/modules/dashboard/snapshot"
	"climatedash-server/internal/modules/dashboard/types"
	"climatedash-server/internal/modules/dashboard/views"
	"climatedash-server/internal/utils"
)

func (c *dashboardControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := &views.IndexData{
		Page:      c.page,
		ActiveTab: "home",
	}

	// A submitted form (no script) carries the year; echo the selection back
	// into the controls and show the dashboard tab.
	if r.URL.Query().Has("year") {
		year, countries, err := parseChartsQuery(r, c.page.Controls.Year.Value)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		data.Page.Controls.Year.Value = year
		data.Page.Controls.Countries.Value = countries
		data.ActiveTab = "dashboard"
	}
	data.Snapshots = snapshotURLs(data.Page.Controls.Year.Value, data.Page.Controls.Countries.Value)

	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, data); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *dashboardControllerImpl) handleCharts(w http.ResponseWriter, r *http.Request) {
	year, countries, err := parseChartsQuery(r, c.page.Controls.Year.Value)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	specs := c.update(year, countries)
	utils.WriteJSON(w, http.StatusOK, specs)

	if c.events != nil {
		c.events.PublishSelection(types.SelectionEvent{
			Year:      year,
			Countries: countries,
			At:        time.Now(),
		})
	}
}

func (c *dashboardControllerImpl) handleControls(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.page.Controls)
}

func (c *dashboardControllerImpl) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || !snapshot.Supported(id) {
		utils.WriteError(w, http.StatusNotFound, "unknown chart")
		return
	}

	year, countries, err := parseChartsQuery(r, c.page.Controls.Year.Value)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	spec, _ := c.update(year, countries).ByID(id)
	var buf bytes.Buffer
	if err := snapshot.Render(&buf, spec, snapshot.DefaultWidth, snapshot.DefaultHeight); err != nil {
		slog.Error("snapshot render failed", "chart", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("snapshot: write response failed", "chart", id, "error", err)
	}
}

func (c *dashboardControllerImpl) update(year int, countries []string) charts.Charts {
	timer := prometheus.NewTimer(metrics.ChartUpdateDuration)
	defer timer.ObserveDuration()
	return charts.Update(c.dataset, c.resolver, year, countries)
}
