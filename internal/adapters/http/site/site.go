// Package site serves the dashboard's embedded static assets.
package site

import (
	"context"
	"net/http"
)

// Prefix is the URL path the assets are mounted under.
const Prefix = "/static/"

// Register attaches the static asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET "+Prefix, Handler())
}

// Handler serves the embedded assets with a short cache lifetime.
func Handler() http.Handler {
	files := http.StripPrefix(Prefix, http.FileServer(FS()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// directory listings are not part of the site
		if r.URL.Path == Prefix {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, r)
	})
}
