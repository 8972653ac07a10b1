package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
)

// subExtractor walks one source table
//
// an exhausted batch (no films, no cursor) tells the coordinator to move on;
// instances are stateful and live for one orchestrator iteration
type subExtractor interface {
	Name() string
	ExtractBatch(ctx context.Context, cur dom.Cursor) (dom.Batch, error)
}

// extractor drains its sub-extractors in a fixed order with a pointer that
// only moves forward; the orchestrator builds a fresh instance per iteration
// which is the only way the pointer resets
type extractor struct {
	subs []subExtractor
	pos  int
}

func newExtractor(repo dom.CatalogRepo, batch int) *extractor {
	return &extractor{
		subs: []subExtractor{
			&filmExtractor{repo: repo, batch: batch},
			newPersonExtractor(repo, batch),
			newGenreExtractor(repo, batch),
		},
	}
}

func (x *extractor) ExtractBatch(ctx context.Context, cur dom.Cursor) (dom.Batch, error) {
	for x.pos < len(x.subs) {
		b, err := x.subs[x.pos].ExtractBatch(ctx, cur)
		if err != nil {
			return dom.Batch{}, err
		}
		if b.Exhausted() {
			x.pos++
			continue
		}
		return b, nil
	}
	return dom.Batch{}, nil
}

// current names the sub-extractor the pointer rests on, for logs
func (x *extractor) current() string {
	if x.pos >= len(x.subs) {
		return "drained"
	}
	return x.subs[x.pos].Name()
}

// filmExtractor pages films by their own updated_at and enriches each page
type filmExtractor struct {
	repo  dom.CatalogRepo
	batch int
}

func (e *filmExtractor) Name() string { return "film_work" }

func (e *filmExtractor) ExtractBatch(ctx context.Context, cur dom.Cursor) (dom.Batch, error) {
	page, err := e.repo.FilmIDsSince(ctx, cur.FilmWorksAt, e.batch)
	if err != nil {
		return dom.Batch{}, err
	}
	if page.Empty() {
		return dom.Batch{}, nil
	}
	films, err := e.repo.FilmsByIDs(ctx, page.IDs)
	if err != nil {
		return dom.Batch{}, err
	}

	// films already carry the freshest person and genre rows, so pull the
	// dimension watermarks forward too; the dimension extractors then skip
	// work this batch has done
	next := cur
	next.FilmWorksAt = page.LastAt
	next.PersonsAt = dom.LaterOf(next.PersonsAt, maxPersonAt(films))
	next.GenresAt = dom.LaterOf(next.GenresAt, maxGenreAt(films))
	return dom.Batch{Films: films, Cursor: &next}, nil
}

// dimensionExtractor runs the two-phase walk shared by persons and genres:
// page changed dimension ids, then fan out to every film referencing them.
// The dimension watermark commits only after the whole fan-out has been
// yielded, so a crash mid fan-out replays it
type dimensionExtractor struct {
	name  string
	batch int

	ids    func(ctx context.Context, after time.Time, limit int) (dom.IDPage, error)
	fanout func(ctx context.Context, ids []uuid.UUID, after time.Time, limit int) (dom.IDPage, error)
	films  func(ctx context.Context, ids []uuid.UUID) ([]dom.FilmWork, error)
	read   func(dom.Cursor) time.Time
	write  func(*dom.Cursor, time.Time)

	// in-flight fan-out state
	active  []uuid.UUID
	maxAt   time.Time
	innerAt time.Time
}

func newPersonExtractor(repo dom.CatalogRepo, batch int) *dimensionExtractor {
	return &dimensionExtractor{
		name:   "person",
		batch:  batch,
		ids:    repo.PersonIDsSince,
		fanout: repo.FilmIDsByPersons,
		films:  repo.FilmsByIDs,
		read:   func(c dom.Cursor) time.Time { return c.PersonsAt },
		write:  func(c *dom.Cursor, t time.Time) { c.PersonsAt = t },
	}
}

func newGenreExtractor(repo dom.CatalogRepo, batch int) *dimensionExtractor {
	return &dimensionExtractor{
		name:   "genre",
		batch:  batch,
		ids:    repo.GenreIDsSince,
		fanout: repo.FilmIDsByGenres,
		films:  repo.FilmsByIDs,
		read:   func(c dom.Cursor) time.Time { return c.GenresAt },
		write:  func(c *dom.Cursor, t time.Time) { c.GenresAt = t },
	}
}

func (e *dimensionExtractor) Name() string { return e.name }

func (e *dimensionExtractor) ExtractBatch(ctx context.Context, cur dom.Cursor) (dom.Batch, error) {
	if len(e.active) == 0 {
		page, err := e.ids(ctx, e.read(cur), e.batch)
		if err != nil {
			return dom.Batch{}, err
		}
		if page.Empty() {
			return dom.Batch{}, nil
		}
		e.active = page.IDs
		e.maxAt = page.LastAt
		e.innerAt = time.Time{}
	}

	page, err := e.fanout(ctx, e.active, e.innerAt, e.batch)
	if err != nil {
		return dom.Batch{}, err
	}
	if page.Empty() {
		// fan-out drained: commit the dimension watermark, no documents
		next := cur
		e.write(&next, e.maxAt)
		e.active, e.maxAt, e.innerAt = nil, time.Time{}, time.Time{}
		return dom.Batch{Cursor: &next}, nil
	}

	films, err := e.films(ctx, page.IDs)
	if err != nil {
		return dom.Batch{}, err
	}
	// advance the inner film watermark only after a successful enrichment so
	// a failed page is re-read, not skipped
	e.innerAt = page.LastAt
	return dom.Batch{Films: films}, nil
}

// maxPersonAt is the freshest person row nested in films
func maxPersonAt(films []dom.FilmWork) time.Time {
	var at time.Time
	for _, f := range films {
		for _, set := range [][]dom.NamedItem{f.Actors, f.Writers, f.Directors} {
			for _, p := range set {
				at = dom.LaterOf(at, p.UpdatedAt)
			}
		}
	}
	return at
}

// maxGenreAt is the freshest genre row nested in films
func maxGenreAt(films []dom.FilmWork) time.Time {
	var at time.Time
	for _, f := range films {
		for _, g := range f.Genres {
			at = dom.LaterOf(at, g.UpdatedAt)
		}
	}
	return at
}
