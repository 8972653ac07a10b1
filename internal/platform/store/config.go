package store

import (
	"time"

	"github.com/SamMeown/ETL/internal/platform/backoff"
)

// Config gathers the per-backend settings Open consumes
type Config struct {
	AppName string

	PG PGConfig
	ES ESConfig
}

// PGConfig holds postgres pool settings and query tracing knobs
type PGConfig struct {
	Enabled     bool
	ConnString  string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Retry bounds the boot ping loop
	Retry       backoff.Policy
	PingTimeout time.Duration // default 3s
}

// ESConfig configures search backend connectivity
type ESConfig struct {
	Enabled bool
	BaseURL string

	// Retry bounds the boot ping loop
	Retry       backoff.Policy
	PingTimeout time.Duration // default 3s
}
