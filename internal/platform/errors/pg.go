package errors

// Postgres SQLSTATE classification. The pipeline only reads the catalog, so
// the mapping cares about three things: is the row contract broken, is the
// server reachable, is the query itself wrong

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE class prefixes (the first two characters)
const (
	sqlClassDataException   = "22" // bad literal, truncation
	sqlClassIntegrity       = "23" // unique, fk, not null, check
	sqlClassTxRollback      = "40" // serialization failure, deadlock
	sqlClassSyntaxOrAccess  = "42" // undefined table/column, bad SQL
	sqlClassInsufficientRes = "53" // out of memory, too many connections
	sqlClassOperator        = "57" // admin shutdown, cannot connect now
	sqlClassSystem          = "58" // io error, system failure
	sqlClassConnection      = "08" // connection exception
)

// AsPgError digs a *pgconn.PgError out of the chain
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := stderrs.As(err, &pgErr)
	return pgErr, ok
}

// pgKind buckets a SQLSTATE by class
func pgKind(code string) Kind {
	if len(code) < 2 {
		return KindStorage
	}
	switch code[:2] {
	case sqlClassIntegrity:
		return KindConflict
	case sqlClassDataException:
		return KindInvalid
	case sqlClassConnection, sqlClassInsufficientRes, sqlClassOperator, sqlClassSystem:
		return KindUnavailable
	case sqlClassTxRollback:
		// contention resolves on retry
		return KindUnavailable
	case sqlClassSyntaxOrAccess:
		// schema drift: retrying will not fix it but must not kill the loop,
		// so it still lands on storage and surfaces every iteration
		return KindStorage
	default:
		return KindStorage
	}
}

// FromPostgres classifies a database error and tags it with the failing
// operation; nil stays nil so call sites can wrap unconditionally
func FromPostgres(err error, op string) error {
	if err == nil {
		return nil
	}
	if pgErr, ok := AsPgError(err); ok {
		return Wrapf(err, pgKind(pgErr.Code), "%s (sqlstate %s)", op, pgErr.Code)
	}
	return Wrap(err, KindStorage, op)
}

// IsPgClass reports whether err carries a SQLSTATE in the given class prefix
func IsPgClass(err error, class string) bool {
	pgErr, ok := AsPgError(err)
	return ok && strings.HasPrefix(pgErr.Code, class)
}

// PgUnavailable reports a server-side condition worth waiting out
func PgUnavailable(err error) bool {
	pgErr, ok := AsPgError(err)
	if !ok {
		return false
	}
	return pgKind(pgErr.Code) == KindUnavailable
}
