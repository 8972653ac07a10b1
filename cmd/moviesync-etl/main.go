// Command moviesync-etl runs the Postgres to Elasticsearch sync daemon
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/SamMeown/ETL/internal/modkit"
	"github.com/SamMeown/ETL/internal/platform/config"
	"github.com/SamMeown/ETL/internal/platform/logger"
	"github.com/SamMeown/ETL/internal/platform/state"
	"github.com/SamMeown/ETL/internal/platform/store"
	"github.com/SamMeown/ETL/internal/platform/web"

	"github.com/SamMeown/ETL/internal/services/ops"
	dom "github.com/SamMeown/ETL/internal/services/sync/domain"
	syncmod "github.com/SamMeown/ETL/internal/services/sync/module"
)

// opsEnabled honors "set but empty disables the listener"
func opsEnabled() bool {
	v, ok := os.LookupEnv("OPS_ADDR")
	return !ok || strings.TrimSpace(v) != ""
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("PG_")

	l := logger.Get()

	fConfig := flag.String("config", "config.json", "path to the pipeline config file")
	flag.Parse()

	file, err := config.LoadFile(*fConfig)
	if err != nil {
		l.Fatal().Err(err).Str("path", *fConfig).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "moviesync-etl",
		PG: store.PGConfig{
			Enabled:    true,
			ConnString: file.Postgres.DSN.ConnString(),
			// one connection end to end unless an operator says otherwise
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 1)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			Retry:       file.Postgres.Retry.Policy(),
		},
		ES: store.ESConfig{
			Enabled: true,
			BaseURL: file.Elastic.DSN.BaseURL(),
			Retry:   file.Elastic.Retry.Policy(),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	states, err := state.Open(file.StateFilePath)
	if err != nil {
		l.Fatal().Err(err).Str("path", file.StateFilePath).Msg("state open failed")
	}
	// fail fast on an unreadable cursor before anything talks to the backends
	if _, err := dom.CursorFromState(states.Get); err != nil {
		l.Fatal().Err(err).Str("path", states.Path()).Msg("state file is corrupt")
	}

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		PG:  st.PG,
		ES:  st.ES,
	}

	sm := syncmod.Register(deps, states, syncmod.FromFile(file))
	ports := modkit.MustPortsOf[syncmod.Ports](sm)

	// ops listener (OPS_ADDR, default :4000; set empty to disable)
	opsDone := make(chan struct{})
	if opsEnabled() {
		srv := web.NewServer(root)
		ops.Mount(srv.Router(), deps, ops.Options{
			Profiler: root.MayBool("OPS_PROFILER", false),
		})
		go func() {
			defer close(opsDone)
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Msg("ops listener failed")
			}
		}()
	} else {
		close(opsDone)
	}

	err = ports.Runner.Run(ctx)

	// release the listener even when the loop ended on its own
	stop()
	<-opsDone

	if err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal().Err(err).Msg("sync loop failed")
	}
	l.Info().Msg("moviesync stopped")
}
