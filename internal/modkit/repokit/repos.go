// Package repokit holds the pieces repositories share: the query seam their
// binders close over and the row types queries hand back
package repokit

import "github.com/SamMeown/ETL/internal/platform/store"

// Queryer is the read surface repositories run against; the pgx pool adapter
// satisfies it in production, fakes satisfy it in tests
type Queryer = store.RowQuerier

type (
	// Rows is a multi-row result
	Rows = store.Rows

	// Row is a single-row result
	Row = store.Row

	// CommandTag reports what a statement touched
	CommandTag = store.CommandTag
)
