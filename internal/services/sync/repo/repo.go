// Package repo provides postgres access to the movies catalog
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SamMeown/ETL/internal/modkit/repokit"
	perr "github.com/SamMeown/ETL/internal/platform/errors"
	"github.com/SamMeown/ETL/internal/platform/store"
	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
)

type (
	// PG implements the CatalogRepo contract over Postgres
	PG struct{}

	// queries carries the bound queryer the catalog reads run on
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres catalog repository binder
func NewPG() repokit.Binder[dom.CatalogRepo] { return PG{} }

// Bind binds a Postgres queryer to the CatalogRepo implementation
func (PG) Bind(q repokit.Queryer) dom.CatalogRepo { return &queries{q: q} }

func (r *queries) FilmIDsSince(ctx context.Context, after time.Time, limit int) (dom.IDPage, error) {
	const sql = `
select id, updated_at
from content.film_work
where updated_at > $1
order by updated_at
limit $2
`
	return r.pageIDs(ctx, "film ids since", sql, after, limit)
}

func (r *queries) PersonIDsSince(ctx context.Context, after time.Time, limit int) (dom.IDPage, error) {
	const sql = `
select id, updated_at
from content.person
where updated_at > $1
order by updated_at
limit $2
`
	return r.pageIDs(ctx, "person ids since", sql, after, limit)
}

func (r *queries) GenreIDsSince(ctx context.Context, after time.Time, limit int) (dom.IDPage, error) {
	const sql = `
select id, updated_at
from content.genre
where updated_at > $1
order by updated_at
limit $2
`
	return r.pageIDs(ctx, "genre ids since", sql, after, limit)
}

func (r *queries) FilmIDsByPersons(
	ctx context.Context,
	persons []uuid.UUID,
	after time.Time,
	limit int,
) (dom.IDPage, error) {
	const sql = `
select distinct fw.id, fw.updated_at
from content.film_work fw
join content.person_film_work pfw on pfw.film_work_id = fw.id
where pfw.person_id = any($1)
and fw.updated_at > $2
order by fw.updated_at
limit $3
`
	return r.pageIDs(ctx, "film ids by persons", sql, persons, after, limit)
}

func (r *queries) FilmIDsByGenres(
	ctx context.Context,
	genres []uuid.UUID,
	after time.Time,
	limit int,
) (dom.IDPage, error) {
	const sql = `
select distinct fw.id, fw.updated_at
from content.film_work fw
join content.genre_film_work gfw on gfw.film_work_id = fw.id
where gfw.genre_id = any($1)
and fw.updated_at > $2
order by fw.updated_at
limit $3
`
	return r.pageIDs(ctx, "film ids by genres", sql, genres, after, limit)
}

// FilmsByIDs runs the enrichment join and folds the cartesian stream into
// one FilmWork per id. Ordering by (updated_at, id) keeps each film's rows
// adjacent and the output in cursor order
func (r *queries) FilmsByIDs(ctx context.Context, ids []uuid.UUID) ([]dom.FilmWork, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const sql = `
select
fw.id, fw.title, fw.description, fw.rating, fw.type, fw.updated_at,
pfw.role, p.id, p.full_name, p.updated_at,
g.id, g.name, g.updated_at
from content.film_work fw
left join content.person_film_work pfw on pfw.film_work_id = fw.id
left join content.person p on p.id = pfw.person_id
left join content.genre_film_work gfw on gfw.film_work_id = fw.id
left join content.genre g on g.id = gfw.genre_id
where fw.id = any($1)
order by fw.updated_at, fw.id
`
	stream, err := store.Many(ctx, r.q, scanFilmRow, sql, ids)
	if err != nil {
		return nil, perr.FromPostgres(err, "films by ids")
	}
	return dom.Fold(stream), nil
}

func scanFilmRow(row store.Row) (dom.FilmRow, error) {
	var fr dom.FilmRow
	err := row.Scan(
		&fr.ID,
		&fr.Title,
		&fr.Description,
		&fr.Rating,
		&fr.Type,
		&fr.UpdatedAt,
		&fr.Role,
		&fr.PersonID,
		&fr.PersonName,
		&fr.PersonUpdatedAt,
		&fr.GenreID,
		&fr.GenreName,
		&fr.GenreUpdatedAt,
	)
	return fr, err
}

type idStamp struct {
	id uuid.UUID
	at time.Time
}

// pageIDs scans an ordered (id, updated_at) page; LastAt ends up as the page
// maximum because every page query orders by updated_at ascending
func (r *queries) pageIDs(ctx context.Context, op, sql string, args ...any) (dom.IDPage, error) {
	stamps, err := store.Many(ctx, r.q, func(row store.Row) (idStamp, error) {
		var s idStamp
		err := row.Scan(&s.id, &s.at)
		return s, err
	}, sql, args...)
	if err != nil {
		return dom.IDPage{}, perr.FromPostgres(err, op)
	}

	var page dom.IDPage
	for _, s := range stamps {
		page.IDs = append(page.IDs, s.id)
		page.LastAt = s.at
	}
	return page, nil
}
