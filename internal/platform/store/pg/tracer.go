package pg

import (
	"context"
	"strings"

	"github.com/SamMeown/ETL/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement when tracing is on
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement. The child logger is forced to debug level so
// PG_LOG_SQL=true shows statements even when the root runs quieter
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &logTracer{log: ll}
}

type logTracer struct{ log logger.Logger }

// OnQuery emits one line per statement, warn when it ran slow
func (t *logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := t.log.Info()
	if ev.Slow {
		evt = t.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", flatten(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// flatten collapses statement whitespace so one query is one log line
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
