// Package web holds the embedded HTML templates and static assets of the
// admin pages.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

const (
	StockTemplate = "stock.html"
	ErrorTemplate = "error.html"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every embedded page template.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Static serves the embedded assets rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
