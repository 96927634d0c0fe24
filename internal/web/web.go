// Package web holds the HTML templates and the static copy of the public
// pages.
package web

import (
	"embed"
	"html/template"

	"techcorp/internal/models"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"contains": models.Contains,
}

// Templates parses every embedded page template. Each page is addressed by
// its file name, e.g. "home.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}
