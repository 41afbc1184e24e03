package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"climatedash-server/internal/modules/dashboard/dataset"
	"climatedash-server/internal/modules/dashboard/layout"
	"climatedash-server/internal/modules/dashboard/types"
)

func testPage(t *testing.T) layout.Page {
	t.Helper()
	ds, err := dataset.New([]types.IndicatorRow{
		{Country: "Armenia", Year: 1990},
		{Country: "Portugal", Year: 2010},
		{Country: "Chad", Year: 2010},
	}, nil)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return layout.Build(ds)
}

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if pageTmpl == nil {
		t.Fatal("LoadTemplates() left pageTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS) = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/base.html":           {Data: []byte("{{ .")},
		"templates/partials/extra.html": {Data: []byte("")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS) = nil; want error")
	}
}

func TestRenderIndex_notLoaded(t *testing.T) {
	prev := pageTmpl
	pageTmpl = nil
	t.Cleanup(func() { pageTmpl = prev })

	err := RenderIndex(&bytes.Buffer{}, &IndexData{})
	if err == nil {
		t.Fatal("RenderIndex() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err)
	}
}

func TestRenderIndex(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	var buf bytes.Buffer
	err := RenderIndex(&buf, &IndexData{
		Page:      testPage(t),
		ActiveTab: "dashboard",
		Snapshots: map[string]string{"bar_graph": "/charts/bar_graph.png?year=2007"},
	})
	if err != nil {
		t.Fatalf("RenderIndex() = %v; want nil", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Global Warming Visualized</title>",
		`data-tab="home"`,
		`data-tab="dashboard"`,
		`id="heat_map"`,
		`id="bar_graph"`,
		`id="scatter_plot"`,
		`id="bubble_chart"`,
		`min="1990"`,
		`max="2010"`,
		`value="2007"`,
		`<option value="Armenia" selected>Armenia</option>`,
		`<option value="Chad">Chad</option>`,
		`/charts/bar_graph.png?year=2007`,
		"https://github.com/NorayrMeliksetyan/GlobalWarming",
		"Norayr Meliksetyan",
		"meat_consumption",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "heat_map.png") {
		t.Error("unexpected snapshot for heat_map")
	}
}
