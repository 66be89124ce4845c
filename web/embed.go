package web

import (
	"embed"
	"html/template"
	"io/fs"
)

// templateFS holds the server-rendered pages. Each page defines a template named after its file.
//
//go:embed templates/*.html
var templateFS embed.FS

// staticFS holds the stylesheet and the code-input script.
//
//go:embed all:static
var staticFS embed.FS

// Templates parses every page template with the provided helper functions.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at the static directory.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
