// Package module wires the sync pipeline as a modkit.Module
package module

import (
	"github.com/SamMeown/ETL/internal/modkit"

	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
	syncservice "github.com/SamMeown/ETL/internal/services/sync/service"

	"github.com/go-chi/chi/v5"
)

// Ports exported by the sync module
type Ports struct {
	Runner dom.RunnerPort
	Status dom.StatusPort
}

// Module implements modkit.Module for the sync pipeline
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs and wires the sync module
func New(deps modkit.Deps, st syncservice.StateStore, opts Options) *Module {
	svc := syncservice.New(deps, st, syncservice.Config{
		Index:     opts.Index,
		BatchSize: opts.BatchSize,
		SyncEvery: opts.SyncEvery,
		PGRetry:   opts.PGRetry,
		ESRetry:   opts.ESRetry,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc, Status: svc}
	return m
}

// Name is the key the module registers under
func (m *Module) Name() string { return "sync" }

// Ports exposes the runner and status ports for other modules
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: the pipeline has no HTTP routes of its own
func (m *Module) MountRoutes(_ chi.Router) {}

// Register wires the module and publishes its ports in the shared registry
func Register(deps modkit.Deps, st syncservice.StateStore, opts Options) *Module {
	m := New(deps, st, opts)
	modkit.Register(m.Name(), m.ports)
	return m
}
