package domain

import (
	"time"

	perr "github.com/SamMeown/ETL/internal/platform/errors"
)

// State keys the pipeline persists between runs
const (
	StateKeyFilmWorks = "filmworks_synced_date"
	StateKeyPersons   = "persons_synced_date"
	StateKeyGenres    = "genres_synced_date"
)

// cursorLayout always renders a numeric zone offset so the cold-start epoch
// round-trips as 0001-01-01T00:00:00+00:00
const cursorLayout = "2006-01-02T15:04:05.999999999-07:00"

// Cursor is the sync high-watermark triple
// the zero value is the epoch minimum used on cold start
type Cursor struct {
	FilmWorksAt time.Time
	PersonsAt   time.Time
	GenresAt    time.Time
}

// FormatCursorTime renders t for persistence
func FormatCursorTime(t time.Time) string { return t.Format(cursorLayout) }

// ParseCursorTime decodes a persisted cursor value
func ParseCursorTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// CursorFromState assembles the triple from persisted values
// a missing or empty key reads as the epoch minimum; a malformed value errors
func CursorFromState(get func(string) (string, bool)) (Cursor, error) {
	var c Cursor
	for _, f := range []struct {
		key string
		dst *time.Time
	}{
		{StateKeyFilmWorks, &c.FilmWorksAt},
		{StateKeyPersons, &c.PersonsAt},
		{StateKeyGenres, &c.GenresAt},
	} {
		s, ok := get(f.key)
		if !ok || s == "" {
			continue
		}
		t, err := ParseCursorTime(s)
		if err != nil {
			return Cursor{}, perr.Wrapf(err, perr.KindParse, "state key %s", f.key)
		}
		*f.dst = t
	}
	return c, nil
}

// State renders the full triple for atomic persistence
// always all three keys so a snapshot is never partially stale
func (c Cursor) State() map[string]string {
	return map[string]string{
		StateKeyFilmWorks: FormatCursorTime(c.FilmWorksAt),
		StateKeyPersons:   FormatCursorTime(c.PersonsAt),
		StateKeyGenres:    FormatCursorTime(c.GenresAt),
	}
}

// LaterOf returns the later of two instants
func LaterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
