package errors

// Transient classification used by backoff policies around extract, load, and connect calls

import (
	"context"
	stderrs "errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Transient reports whether err looks like an infrastructure failure a
// backoff retry may outlive: any Postgres server error or a connection-level
// network failure. Local cancellations and deadlines are never transient
//
// note that server-side errors an operator must fix (missing column, bad
// SQL) also classify as transient here; they keep retrying and surfacing
// each iteration instead of killing the pipeline
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return true
	}

	var netErr net.Error
	if stderrs.As(err, &netErr) {
		return true
	}
	if stderrs.Is(err, io.EOF) || stderrs.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if stderrs.Is(err, syscall.ECONNREFUSED) || stderrs.Is(err, syscall.ECONNRESET) || stderrs.Is(err, syscall.EPIPE) {
		return true
	}

	// text fallbacks for driver errors that carry no typed cause
	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "failed to connect"),
		strings.Contains(s, "conn closed"),
		strings.Contains(s, "closed pool"):
		return true
	default:
		return false
	}
}
