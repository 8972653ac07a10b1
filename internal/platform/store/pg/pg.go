// Package pg owns the pgxpool connection to the movies catalog and the
// optional statement tracing around it
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries what the pool needs to come up
type Config struct {
	// DSN is a pgx keyword/value or URL connection string
	DSN string

	// AppName shows up as application_name in pg_stat_activity when set,
	// overriding any value the DSN carries
	AppName string

	// MaxConns caps the pool; the sync loop runs single threaded so the
	// daemon usually sets 1
	MaxConns int32

	// SlowMS marks statements at or over this many milliseconds as slow;
	// zero or negative turns the marking off
	SlowMS int
}

// Client is the pool plus its tracing knobs
type Client struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMS int
}

// seam so tests can fail pool construction without a server
var newPool = pgxpool.NewWithConfig

// Open parses cfg and builds the pool; it does not ping
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*Client, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &Client{Pool: pool, Tracer: tracer, SlowMS: cfg.SlowMS}, nil
}

// Close releases the pool; safe on nil
func (c *Client) Close() {
	if c != nil && c.Pool != nil {
		c.Pool.Close()
	}
}
