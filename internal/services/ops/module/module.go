// Package module packages the operational endpoints as a modkit.Module
package module

import (
	"time"

	"github.com/SamMeown/ETL/internal/modkit"
	"github.com/SamMeown/ETL/internal/platform/store"

	opshttp "github.com/SamMeown/ETL/internal/services/ops/http"
	dom "github.com/SamMeown/ETL/internal/services/sync/domain"

	"github.com/go-chi/chi/v5"
)

// Ports declares the sync-side port the endpoints report on
type Ports struct {
	Status dom.StatusPort
}

// Module serves health, readiness, version and sync progress under /ops
type Module struct {
	deps      modkit.Deps
	ports     Ports
	startedAt time.Time
}

// New wires the module; the status port is required
func New(deps modkit.Deps, p Ports) *Module {
	if p.Status == nil {
		panic("ops: nil sync status port")
	}
	return &Module{deps: deps, ports: p, startedAt: time.Now()}
}

// Name identifies the module in logs and the registry
func (m *Module) Name() string { return "ops" }

// Ports is nil: this module only consumes ports
func (m *Module) Ports() any { return nil }

// MountRoutes attaches the endpoints under /ops
func (m *Module) MountRoutes(r chi.Router) {
	r.Route("/ops", func(rr chi.Router) {
		opshttp.Register(rr, opshttp.Deps{
			ServiceName: "moviesync",
			StartedAt:   m.startedAt,
			PG:          asPinger(m.deps.PG),
			ES:          asPinger(m.deps.ES),
			Status:      m.ports.Status,
		})
	})
	m.deps.Log.Info().Str("module", m.Name()).Str("prefix", "/ops").Msg("routes mounted")
}

// asPinger narrows a backend seam to its readiness capability
func asPinger(v any) store.Pinger {
	p, _ := v.(store.Pinger)
	return p
}
