// Package ops exposes the daemon's operational endpoints over HTTP
package ops

import (
	"github.com/SamMeown/ETL/internal/modkit"
	"github.com/SamMeown/ETL/internal/platform/web"

	opsmod "github.com/SamMeown/ETL/internal/services/ops/module"
	syncmod "github.com/SamMeown/ETL/internal/services/sync/module"

	"github.com/go-chi/chi/v5"
)

// Options tune the mounted surface
type Options struct {
	// Profiler exposes /debug/pprof when an operator turns it on
	Profiler bool
}

// Mount attaches the shared middleware chain and the ops module to r. The
// sync module must already be registered: its status port is resolved
// through the module registry
func Mount(r chi.Router, deps modkit.Deps, opt Options) {
	r.Use(web.Stack()...)
	web.Profile(r, opt.Profiler)

	sp, ok := modkit.PortsAs[syncmod.Ports]("sync")
	if !ok {
		panic("ops: sync module is not registered")
	}

	m := opsmod.New(deps, opsmod.Ports{Status: sp.Status})
	m.MountRoutes(r)
}
