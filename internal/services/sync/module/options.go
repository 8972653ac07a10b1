package module

import (
	"time"

	"github.com/SamMeown/ETL/internal/platform/backoff"
	"github.com/SamMeown/ETL/internal/platform/config"
)

// Options for the sync module
type Options struct {
	Index     string
	BatchSize int
	SyncEvery time.Duration
	PGRetry   backoff.Policy
	ESRetry   backoff.Policy
}

// FromFile maps the pipeline file configuration onto module options
// defaults were already applied by config.LoadFile
func FromFile(f *config.File) Options {
	return Options{
		Index:     f.Elastic.DSN.Index(),
		BatchSize: f.BatchSize,
		SyncEvery: f.SyncEvery(),
		PGRetry:   f.Postgres.Retry.Policy(),
		ESRetry:   f.Elastic.Retry.Policy(),
	}
}
