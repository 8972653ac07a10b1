package store

import (
	"context"
	"time"

	"github.com/SamMeown/ETL/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgQuerier adapts a pg.Client to the RowQuerier seam and feeds the tracer
type pgQuerier struct {
	c *pg.Client
}

func newPGQuerier(c *pg.Client) *pgQuerier { return &pgQuerier{c: c} }

// Ping answers readiness probes with a round trip through the pool
func (a *pgQuerier) Ping(ctx context.Context) error {
	_, err := Scalar[int](ctx, a, "select 1")
	return err
}

// Close releases the pool
func (a *pgQuerier) Close() error {
	a.c.Close()
	return nil
}

func (a *pgQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := a.c.Pool.Exec(ctx, sql, args...)
	a.trace(ctx, sql, args, start, err)
	return pgTag{ct}, err
}

// Query traces at open; scan time is the caller's
func (a *pgQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.c.Pool.Query(ctx, sql, args...)
	a.trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{rs: rs}, nil
}

// QueryRow defers the trace until Scan, which is when pgx surfaces the error
func (a *pgQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := a.c.Pool.QueryRow(ctx, sql, args...)
	return pgRow{
		r: r,
		scanned: func(scanErr error) {
			a.trace(ctx, sql, args, start, scanErr)
		},
	}
}

func (a *pgQuerier) trace(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if a == nil || a.c == nil || a.c.Tracer == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	a.c.Tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      a.c.SlowMS > 0 && elapsedUS >= int64(a.c.SlowMS)*1000,
	})
}

// thin pgx wrappers satisfying the Row/Rows/CommandTag seams

type pgRow struct {
	r       pgx.Row
	scanned func(error)
}

func (x pgRow) Scan(dest ...any) error {
	err := x.r.Scan(dest...)
	if x.scanned != nil {
		x.scanned(err)
	}
	return err
}

type pgRows struct{ rs pgx.Rows }

func (x pgRows) Next() bool             { return x.rs.Next() }
func (x pgRows) Scan(dest ...any) error { return x.rs.Scan(dest...) }
func (x pgRows) Err() error             { return x.rs.Err() }
func (x pgRows) Close()                 { x.rs.Close() }

type pgTag struct{ t pgconn.CommandTag }

func (x pgTag) String() string      { return x.t.String() }
func (x pgTag) RowsAffected() int64 { return x.t.RowsAffected() }
