package domain

import (
	"time"

	"github.com/google/uuid"
)

// Person roles as stored in content.person_film_work
const (
	RoleActor    = "actor"
	RoleWriter   = "writer"
	RoleDirector = "director"
)

// FilmRow is one raw row of the enrichment join, before folding
//
// join legs are pointers because a film with no persons or no genres comes
// back with NULL columns from the LEFT JOINs
type FilmRow struct {
	ID          uuid.UUID
	Title       *string
	Description *string
	Rating      *float64
	Type        *string
	UpdatedAt   time.Time

	Role            *string
	PersonID        *uuid.UUID
	PersonName      *string
	PersonUpdatedAt *time.Time

	GenreID        *uuid.UUID
	GenreName      *string
	GenreUpdatedAt *time.Time
}

// Fold collapses an ordered join stream into one FilmWork per film
//
// rows must arrive grouped by film id (the enrichment query orders by
// updated_at then id). Person legs dispatch on role; unknown roles are
// dropped. Both legs dedupe by id keeping first-seen order
func Fold(rows []FilmRow) []FilmWork {
	var out []FilmWork
	var cur *filmBuilder
	for i := range rows {
		r := &rows[i]
		if cur == nil || cur.fw.ID != r.ID {
			if cur != nil {
				out = append(out, cur.fw)
			}
			cur = newFilmBuilder(r)
		}
		cur.add(r)
	}
	if cur != nil {
		out = append(out, cur.fw)
	}
	return out
}

type filmBuilder struct {
	fw   FilmWork
	seen map[string]struct{}
}

func newFilmBuilder(r *FilmRow) *filmBuilder {
	return &filmBuilder{
		fw: FilmWork{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Rating:      r.Rating,
			Type:        strVal(r.Type),
			UpdatedAt:   r.UpdatedAt,
		},
		seen: make(map[string]struct{}, 8),
	}
}

func (b *filmBuilder) add(r *FilmRow) {
	if r.PersonID != nil && r.Role != nil {
		p := NamedItem{ID: *r.PersonID, Name: strVal(r.PersonName), UpdatedAt: timeVal(r.PersonUpdatedAt)}
		switch *r.Role {
		case RoleActor:
			b.fw.Actors = b.insert("a", b.fw.Actors, p)
		case RoleWriter:
			b.fw.Writers = b.insert("w", b.fw.Writers, p)
		case RoleDirector:
			b.fw.Directors = b.insert("d", b.fw.Directors, p)
		}
	}
	if r.GenreID != nil {
		g := NamedItem{ID: *r.GenreID, Name: strVal(r.GenreName), UpdatedAt: timeVal(r.GenreUpdatedAt)}
		b.fw.Genres = b.insert("g", b.fw.Genres, g)
	}
}

// insert appends it to dst unless an item with the same id is already there
// kind keeps the four sets apart in one seen map
func (b *filmBuilder) insert(kind string, dst []NamedItem, it NamedItem) []NamedItem {
	k := kind + it.ID.String()
	if _, ok := b.seen[k]; ok {
		return dst
	}
	b.seen[k] = struct{}{}
	return append(dst, it)
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
