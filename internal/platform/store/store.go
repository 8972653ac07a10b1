// Package store provides a unified interface to the pipeline's storage
// backends: the Postgres source and the Elasticsearch target
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/SamMeown/ETL/internal/platform/logger"
)

// Store is the facade over the opened backends; the zero value holds no
// seams and tolerates Guard and Close
type Store struct {
	// Log is handed to the backend clients; the zerolog zero value
	// discards everything, so leaving it unset is fine
	Log logger.Logger

	// PG is the relational source seam, nil unless enabled
	PG RowQuerier

	// ES is the search index seam, nil unless enabled
	ES Search
}

// Row is the single-row scan surface
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set; its method
// set includes Row so scanners work on either
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos use; the sync pipeline only reads,
// Exec exists for tooling and test seeding
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// BulkResult reports the outcome of one bulk request
type BulkResult struct {
	// StatusCode is the HTTP status of the bulk response
	StatusCode int
	// Errors mirrors the "errors" flag of the bulk response; absent means false
	Errors bool
}

// OK reports whether the bulk request was fully accepted
func (r BulkResult) OK() bool { return r.StatusCode == 200 && !r.Errors }

// Search is the seam to the document index
type Search interface {
	// Bulk posts an NDJSON body to the bulk endpoint
	// transport failures return an error; HTTP or per item failures are
	// reported through BulkResult
	Bulk(ctx context.Context, body []byte) (BulkResult, error)

	// CreateIndex creates name with the given settings/mappings body
	// created=false means the index already existed
	CreateIndex(ctx context.Context, name string, body []byte) (created bool, err error)

	// IndexExists reports whether name exists
	IndexExists(ctx context.Context, name string) (bool, error)

	Close() error
}

// Pinger is implemented by seams that can check their own liveness
type Pinger interface{ Ping(context.Context) error }

// Open dials the backends enabled in cfg and pings each before returning;
// disabled backends stay nil on the Store
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// normalize a zero logger so subclients never nil-check
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		pgClient, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pgClient
	}

	if cfg.ES.Enabled {
		esClient, err := openES(ctx, cfg, s)
		if err != nil {
			if c, ok := s.PG.(interface{ Close() error }); ok {
				_ = c.Close()
			}
			return nil, err
		}
		s.ES = esClient
	}

	return s, nil
}

// Guard verifies all configured seams the Store knows about
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if s.PG != nil {
		if p, ok := any(s.PG).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("pg: %w", err))
			}
		}
	}
	if s.ES != nil {
		if p, ok := any(s.ES).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("es: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend; seams never opened are skipped
func (s *Store) Close(ctx context.Context) error {
	var errs []error

	if s.ES != nil {
		if e := s.ES.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if c, ok := s.PG.(interface{ Close() error }); ok {
		if e := c.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	return errors.Join(errs...)
}
