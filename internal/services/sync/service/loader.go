package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/SamMeown/ETL/internal/platform/logger"
	"github.com/SamMeown/ETL/internal/platform/store"
	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
)

// Loader ships folded films to the bulk endpoint of one index
//
// replays are idempotent because every action carries an explicit _id, so
// the orchestrator may resend a batch after a crash or rejection
type Loader struct {
	es    store.Search
	index string
}

// NewLoader constructs a Loader writing to index
func NewLoader(es store.Search, index string) *Loader {
	if es == nil {
		panic("sync.Loader requires a non nil search seam")
	}
	return &Loader{es: es, index: index}
}

// Load implements the LoaderPort contract
//
// ok=false with a nil error means the backend rejected the batch (non-200 or
// per item errors); only transport failures come back as errors
func (l *Loader) Load(ctx context.Context, films []dom.FilmWork) (bool, *time.Time, error) {
	if len(films) == 0 {
		return true, nil, nil
	}

	body, indexed, deleted, err := l.buildBody(films)
	if err != nil {
		return false, nil, err
	}

	res, err := l.es.Bulk(ctx, body)
	if err != nil {
		return false, nil, err
	}
	if !res.OK() {
		logger.C(ctx).Warn().
			Int("status", res.StatusCode).
			Bool("errors", res.Errors).
			Int("index_actions", indexed).
			Int("delete_actions", deleted).
			Msg("sync: bulk rejected, batch will repeat")
		return false, nil, nil
	}

	hw := films[len(films)-1].UpdatedAt
	logger.C(ctx).Debug().
		Int("index_actions", indexed).
		Int("delete_actions", deleted).
		Time("watermark", hw).
		Msg("sync: bulk accepted")
	return true, &hw, nil
}

// buildBody renders the NDJSON payload: one action line per film, one
// document line after each index action, every line newline-terminated
func (l *Loader) buildBody(films []dom.FilmWork) (body []byte, indexed, deleted int, err error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf) // Encode terminates each value with '\n'

	for i := range films {
		f := &films[i]
		meta := &actionMeta{Index: l.index, ID: f.ID.String()}
		if f.Deleted() {
			if err := enc.Encode(bulkAction{Delete: meta}); err != nil {
				return nil, 0, 0, err
			}
			deleted++
			continue
		}
		if err := enc.Encode(bulkAction{Index: meta}); err != nil {
			return nil, 0, 0, err
		}
		if err := enc.Encode(docFromFilm(f)); err != nil {
			return nil, 0, 0, err
		}
		indexed++
	}
	return buf.Bytes(), indexed, deleted, nil
}

type bulkAction struct {
	Index  *actionMeta `json:"index,omitempty"`
	Delete *actionMeta `json:"delete,omitempty"`
}

type actionMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// movieDoc is the indexed document shape
// description and imdb_rating stay present as null; type drops out when empty
type movieDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IMDBRating  *float64  `json:"imdb_rating"`
	Type        string    `json:"type,omitempty"`
	Actors      []docItem `json:"actors"`
	Writers     []docItem `json:"writers"`
	Directors   []docItem `json:"directors"`
	Genres      []docItem `json:"genres"`

	ActorsNames    string `json:"actors_names"`
	WritersNames   string `json:"writers_names"`
	DirectorsNames string `json:"directors_names"`
	GenresNames    string `json:"genres_names"`
}

type docItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func docFromFilm(f *dom.FilmWork) movieDoc {
	return movieDoc{
		ID:          f.ID.String(),
		Title:       *f.Title,
		Description: f.Description,
		IMDBRating:  f.Rating,
		Type:        f.Type,
		Actors:      docItems(f.Actors),
		Writers:     docItems(f.Writers),
		Directors:   docItems(f.Directors),
		Genres:      docItems(f.Genres),

		ActorsNames:    joinNames(f.Actors),
		WritersNames:   joinNames(f.Writers),
		DirectorsNames: joinNames(f.Directors),
		GenresNames:    joinNames(f.Genres),
	}
}

// docItems always returns a non nil slice so empty sets serialize as []
func docItems(items []dom.NamedItem) []docItem {
	out := make([]docItem, 0, len(items))
	for _, it := range items {
		out = append(out, docItem{ID: it.ID.String(), Name: it.Name})
	}
	return out
}

func joinNames(items []dom.NamedItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return strings.Join(names, ", ")
}
