// Package domain defines the sync pipeline core ports and types
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IDPage is one page of ids ordered by updated_at, with the page watermark
type IDPage struct {
	IDs    []uuid.UUID
	LastAt time.Time
}

// Empty reports an exhausted page
func (p IDPage) Empty() bool { return len(p.IDs) == 0 }

// CatalogRepo reads the movies catalog in update order
type CatalogRepo interface {
	// FilmIDsSince pages film ids whose own row changed after the watermark
	FilmIDsSince(ctx context.Context, after time.Time, limit int) (IDPage, error)

	// PersonIDsSince and GenreIDsSince page changed dimension ids
	PersonIDsSince(ctx context.Context, after time.Time, limit int) (IDPage, error)
	GenreIDsSince(ctx context.Context, after time.Time, limit int) (IDPage, error)

	// FilmIDsByPersons and FilmIDsByGenres fan a changed dimension set out to
	// the distinct films referencing it, paged by film updated_at
	FilmIDsByPersons(ctx context.Context, persons []uuid.UUID, after time.Time, limit int) (IDPage, error)
	FilmIDsByGenres(ctx context.Context, genres []uuid.UUID, after time.Time, limit int) (IDPage, error)

	// FilmsByIDs runs the enrichment join for ids and folds it into films,
	// ordered by (updated_at, id)
	FilmsByIDs(ctx context.Context, ids []uuid.UUID) ([]FilmWork, error)
}

// LoaderPort pushes folded films into the search index
//
// ok=false without an error means the backend rejected the batch and the
// caller must not advance its cursor; the watermark is the updated_at of the
// last film on success, nil when nothing was sent
type LoaderPort interface {
	Load(ctx context.Context, films []FilmWork) (ok bool, watermark *time.Time, err error)
}

// RunnerPort is the long running sync loop exposed by the module
type RunnerPort interface {
	Run(ctx context.Context) error
}

// StatusPort exposes a snapshot of loop progress for the ops surface
type StatusPort interface {
	SyncStatus() Status
}

// Status is a point-in-time view of the loop for operators
type Status struct {
	Iterations uint64 `json:"iterations"`
	Batches    uint64 `json:"batches"`
	Indexed    uint64 `json:"documents_indexed"`
	Deleted    uint64 `json:"documents_deleted"`

	// LastRunAt is nil until the first iteration completes
	LastRunAt *time.Time `json:"last_run_at"`
	LastError string     `json:"last_error,omitempty"`

	FilmWorksAt time.Time `json:"filmworks_synced_at"`
	PersonsAt   time.Time `json:"persons_synced_at"`
	GenresAt    time.Time `json:"genres_synced_at"`
}
