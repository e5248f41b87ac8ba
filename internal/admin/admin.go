// Package admin holds the HTML templates of the admin grids.
package admin

import (
	"embed"
	"html/template"
	"strings"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates/*.html
var files embed.FS

// Views maps a render name to its template file.
var Views = map[string]string{
	"admin/dashboard": "templates/dashboard.html",
	"admin/list":      "templates/list.html",
	"admin/form":      "templates/form.html",
}

var funcs = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Renderer builds the gin HTML renderer. Every view is executed through
// the "layout" template.
func Renderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	for name, file := range Views {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", file)
		if err != nil {
			return nil, err
		}
		r.Add(name, tmpl.Lookup("layout"))
	}
	return r, nil
}
