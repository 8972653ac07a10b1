// Package modkit is the wiring layer between the daemon binaries and the
// service modules they compose
package modkit

import (
	"github.com/SamMeown/ETL/internal/modkit/repokit"
	"github.com/SamMeown/ETL/internal/platform/config"
	"github.com/SamMeown/ETL/internal/platform/logger"
	"github.com/SamMeown/ETL/internal/platform/store"

	"github.com/go-chi/chi/v5"
)

// Module is what a composed service exposes to the binaries
type Module interface {
	// Name identifies the module in the registry and in panic messages
	Name() string

	// Ports returns the module's exported port set for cross wiring
	Ports() any

	// MountRoutes attaches the module's endpoints, if it has any
	MountRoutes(r chi.Router)
}

// Deps carries the shared process dependencies into module constructors
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.Queryer
	ES  store.Search
}
