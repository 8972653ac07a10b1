// Package http serves the daemon's operational endpoints
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/SamMeown/ETL/internal/core/version"
	"github.com/SamMeown/ETL/internal/platform/store"
	"github.com/SamMeown/ETL/internal/platform/web"

	dom "github.com/SamMeown/ETL/internal/services/sync/domain"

	"github.com/go-chi/chi/v5"
)

// probeTimeout bounds one readiness round trip per backend
const probeTimeout = 2 * time.Second

// Deps carries what the endpoints report on. The backend fields are only
// pinged; nil means the backend is absent and its check reads skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          store.Pinger
	ES          store.Pinger
	Status      dom.StatusPort
}

// Register mounts the endpoint set onto r
func Register(r chi.Router, d Deps) {
	h := handlers{d: d}
	web.Get(r, "/health", h.health)
	web.Get(r, "/ready", h.ready)
	web.Get(r, "/version", h.version)
	web.Get(r, "/sync", h.sync)
}

type handlers struct{ d Deps }

// HealthResponse answers liveness probes
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck is the outcome of probing one backend
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness across backends
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// SyncResponse couples loop progress with the service identity
type SyncResponse struct {
	Service string     `json:"service"`
	Sync    dom.Status `json:"sync"`
}

func (h handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.d.ServiceName,
		Started: h.d.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := []ReadyCheck{
		probe(ctx, "pg", h.d.PG),
		probe(ctx, "es", h.d.ES),
	}

	overall := "ok"
	for _, c := range checks {
		if c.Status == "fail" {
			overall = "fail"
			break
		}
		if c.Status != "ok" {
			overall = "degraded"
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

func (h handlers) sync(_ *http.Request) (any, error) {
	return SyncResponse{
		Service: h.d.ServiceName,
		Sync:    h.d.Status.SyncStatus(),
	}, nil
}

func probe(ctx context.Context, name string, p store.Pinger) ReadyCheck {
	if p == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}
