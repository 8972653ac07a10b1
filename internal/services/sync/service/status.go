package service

import (
	"sync"
	"time"

	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
)

// tracker keeps a loop progress snapshot the ops surface can read while the
// single-threaded pipeline is mid-iteration
type tracker struct {
	mu sync.Mutex
	st dom.Status
}

func (t *tracker) snapshot() dom.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

// observeCursor records the cursor the loop currently works from
func (t *tracker) observeCursor(c dom.Cursor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.FilmWorksAt = c.FilmWorksAt
	t.st.PersonsAt = c.PersonsAt
	t.st.GenresAt = c.GenresAt
}

// observeBatch records one successfully loaded batch
func (t *tracker) observeBatch(films []dom.FilmWork) {
	var deleted uint64
	for i := range films {
		if films[i].Deleted() {
			deleted++
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Batches++
	t.st.Deleted += deleted
	t.st.Indexed += uint64(len(films)) - deleted
}

// observeIteration closes out one iteration, keeping the last error text
func (t *tracker) observeIteration(err error) {
	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Iterations++
	t.st.LastRunAt = &now
	if err != nil {
		t.st.LastError = err.Error()
	} else {
		t.st.LastError = ""
	}
}
