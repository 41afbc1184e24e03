package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"slices"

	"climatedash-server/internal/modules/dashboard/layout"
)

var pageTmpl *template.Template

var funcs = template.FuncMap{
	"selected": func(values []string, v string) bool { return slices.Contains(values, v) },
}

// loadTemplatesFromFS parses the page templates found under dir of fsys.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	t, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	pageTmpl = t
	return nil
}

// LoadTemplates parses the embedded templates. Call it during startup; the
// server must not start when it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model of the dashboard page.
type IndexData struct {
	Page layout.Page
	// ActiveTab is the id of the tab shown on first paint.
	ActiveTab string
	// Snapshots maps chart ids to PNG fallback URLs for clients without
	// JavaScript.
	Snapshots map[string]string
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
