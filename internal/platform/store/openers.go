package store

import (
	"context"
	"fmt"
	"time"

	"github.com/SamMeown/ETL/internal/platform/backoff"
	"github.com/SamMeown/ETL/internal/platform/store/es"
	"github.com/SamMeown/ETL/internal/platform/store/pg"
)

const defaultPingTimeout = 3 * time.Second

// openPG opens pg, verifies it under the configured backoff policy, and
// wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (RowQuerier, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	c, err := pg.Open(ctx, pg.Config{
		DSN:      cfg.PG.ConnString,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		SlowMS:   cfg.PG.SlowQueryMs,
	}, tracer)
	if err != nil {
		return nil, err
	}

	// ping with retry so the pipeline can boot while the database is still
	// coming up; ping directly on the pool so no SQL trace lines are emitted
	if err := pingUnderPolicy(ctx, cfg.PG.Retry, cfg.PG.PingTimeout, c.Pool.Ping); err != nil {
		c.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	a := newPGQuerier(c)
	s.PG = a
	return a, nil
}

// openES builds the search client and verifies it under the configured policy
func openES(ctx context.Context, cfg Config, _ *Store) (Search, error) {
	c, err := es.Open(es.Config{BaseURL: cfg.ES.BaseURL})
	if err != nil {
		return nil, err
	}

	if err := pingUnderPolicy(ctx, cfg.ES.Retry, cfg.ES.PingTimeout, c.Ping); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("elasticsearch ping: %w", err)
	}

	return newESAdapter(c), nil
}

// pingUnderPolicy retries ping with per-attempt timeouts until the policy's
// budget runs out; outer cancellation stops the retries
func pingUnderPolicy(ctx context.Context, pol backoff.Policy, pingTimeout time.Duration, ping func(context.Context) error) error {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	// per-attempt deadline errors must stay retryable while the outer
	// context is alive, so classify on the outer context only
	pol.Retryable = func(error) bool { return ctx.Err() == nil }

	return pol.Do(ctx, func(ctx context.Context) error {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return ping(toCtx)
	})
}
