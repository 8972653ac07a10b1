package web

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Profile mounts pprof under /debug when an operator turns it on
func Profile(r chi.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Mount("/debug", chimw.Profiler())
}
