package domain

import (
	"time"

	"github.com/google/uuid"
)

// NamedItem is one person or genre attached to a film
// identity is the id alone; Name and UpdatedAt ride along for documents and
// cursor advancement
type NamedItem struct {
	ID        uuid.UUID
	Name      string
	UpdatedAt time.Time
}

// FilmWork is the unit of exchange between extraction and loading
//
// a nil Title marks a tombstone: the film fell out of the catalog and its
// document must be deleted from the index
type FilmWork struct {
	ID          uuid.UUID
	Title       *string
	Description *string
	Rating      *float64
	Type        string
	UpdatedAt   time.Time

	Genres    []NamedItem
	Actors    []NamedItem
	Writers   []NamedItem
	Directors []NamedItem
}

// Deleted reports whether the film is a tombstone
func (f FilmWork) Deleted() bool { return f.Title == nil }

// Batch is one extractor step: zero or more films plus an optional commit
// point. A batch may carry films without a cursor (person/genre fan-out in
// flight) or a cursor without films (commit-only step)
type Batch struct {
	Films  []FilmWork
	Cursor *Cursor
}

// Exhausted is the end-of-stream marker: no films and no commit point
func (b Batch) Exhausted() bool { return len(b.Films) == 0 && b.Cursor == nil }
