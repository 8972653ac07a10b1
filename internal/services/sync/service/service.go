// Package service implements the sync pipeline: extract changed rows,
// fold them into films, load them into the index, then commit the cursor
package service

import (
	"context"
	"time"

	"github.com/SamMeown/ETL/internal/modkit"
	"github.com/SamMeown/ETL/internal/modkit/repokit"
	"github.com/SamMeown/ETL/internal/platform/backoff"
	perr "github.com/SamMeown/ETL/internal/platform/errors"
	"github.com/SamMeown/ETL/internal/platform/logger"
	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
	srepo "github.com/SamMeown/ETL/internal/services/sync/repo"
)

// Config controls one sync loop
type Config struct {
	// Index is the target index name
	Index string

	// BatchSize bounds every id page and bulk request
	BatchSize int

	// SyncEvery is the pause between iterations
	SyncEvery time.Duration

	// PGRetry and ESRetry bound the retry loops around extract and load
	PGRetry backoff.Policy
	ESRetry backoff.Policy
}

func (c Config) withDefaults() Config {
	if c.Index == "" {
		c.Index = "movies"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.SyncEvery <= 0 {
		c.SyncEvery = 30 * time.Second
	}
	return c
}

// StateStore is the slice of the state file the loop needs
type StateStore interface {
	Get(key string) (string, bool)
	SetAll(kv map[string]string) error
}

// Svc drives extract, load, persist as one single-threaded loop
type Svc struct {
	repo   dom.CatalogRepo
	loader dom.LoaderPort
	state  StateStore
	cfg    Config
	trk    tracker
}

// New constructs the sync service from shared deps
func New(deps modkit.Deps, st StateStore, cfg Config) *Svc {
	if deps.ES == nil {
		panic("sync.Service requires a search seam")
	}
	if st == nil {
		panic("sync.Service requires a state store")
	}
	cfg = cfg.withDefaults()
	return &Svc{
		repo:   repokit.MustBind(srepo.NewPG(), deps.PG),
		loader: NewLoader(deps.ES, cfg.Index),
		state:  st,
		cfg:    cfg,
	}
}

// SyncStatus implements the StatusPort contract
func (s *Svc) SyncStatus() dom.Status { return s.trk.snapshot() }

// Run loops iterations until ctx is cancelled
//
// iteration errors are logged and absorbed; only cancellation returns
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("sync")
	log.Info().
		Str("index", s.cfg.Index).
		Int("batch_size", s.cfg.BatchSize).
		Dur("interval", s.cfg.SyncEvery).
		Msg("sync: loop starting")

	for {
		if err := s.runIteration(ctx); err != nil {
			// request-scoped timeouts look like ctx errors too, so only the
			// loop's own context decides shutdown
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Stack().Err(err).Msg("sync: iteration failed")
		}
		if err := sleepCtx(ctx, s.cfg.SyncEvery); err != nil {
			return err
		}
	}
}

// runIteration drains one pass over all sources from the persisted cursor
//
// load strictly precedes the cursor commit: a crash in between replays the
// batch, which the explicit document ids make idempotent
func (s *Svc) runIteration(ctx context.Context) (retErr error) {
	defer func() { s.trk.observeIteration(retErr) }()

	cur, err := dom.CursorFromState(s.state.Get)
	if err != nil {
		return err
	}
	s.trk.observeCursor(cur)

	x := newExtractor(s.repo, s.cfg.BatchSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch, err := s.extractBatch(ctx, x, cur)
		if err != nil {
			return err
		}
		if batch.Exhausted() {
			return nil
		}

		if len(batch.Films) > 0 {
			ok, _, err := s.loadBatch(ctx, batch.Films)
			if err != nil {
				return err
			}
			if !ok {
				// rejected by the backend: stop without committing so the
				// same batch repeats next iteration
				return nil
			}
			s.trk.observeBatch(batch.Films)
		}

		if batch.Cursor != nil {
			if err := s.state.SetAll(batch.Cursor.State()); err != nil {
				return err
			}
			cur = *batch.Cursor
			s.trk.observeCursor(cur)
		}
	}
}

// extractBatch polls the coordinator, retrying transient database failures
// under the postgres backoff budget; the pool re-establishes connections
// between attempts
func (s *Svc) extractBatch(ctx context.Context, x *extractor, cur dom.Cursor) (dom.Batch, error) {
	var out dom.Batch
	pol := s.cfg.PGRetry
	pol.Retryable = perr.Transient
	pol.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.C(ctx).Warn().Err(err).
			Str("extractor", x.current()).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("sync: extract failed, retrying")
	}
	err := pol.Do(ctx, func(ctx context.Context) error {
		b, err := x.ExtractBatch(ctx, cur)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// loadBatch ships films, retrying transport failures under the search
// backoff budget. A rejected batch (ok=false) is not an error and does not
// consume the budget
func (s *Svc) loadBatch(ctx context.Context, films []dom.FilmWork) (bool, *time.Time, error) {
	var ok bool
	var hw *time.Time
	pol := s.cfg.ESRetry
	pol.Retryable = perr.Transient
	pol.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.C(ctx).Warn().Err(err).
			Int("films", len(films)).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("sync: load failed, retrying")
	}
	err := pol.Do(ctx, func(ctx context.Context) error {
		var lerr error
		ok, hw, lerr = s.loader.Load(ctx, films)
		return lerr
	})
	return ok, hw, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
