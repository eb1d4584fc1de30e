// Package ui serves the embedded browsing page. The page is a thin
// client over the REST API and the player WebSocket channel.
package ui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static
var staticFiles embed.FS

// RegisterRoutes adds the page routes to the chi router.
func RegisterRoutes(r chi.Router) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The embedded tree always contains static/; reaching this
		// means a broken build.
		panic(err)
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		index, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Write(index)
	})
}
