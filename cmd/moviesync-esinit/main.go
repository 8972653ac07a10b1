// Command moviesync-esinit creates the movies index with the canonical
// settings and mappings; safe to run repeatedly
package main

import (
	"context"
	_ "embed"
	"flag"
	"os/signal"
	"syscall"

	"github.com/SamMeown/ETL/internal/platform/config"
	"github.com/SamMeown/ETL/internal/platform/logger"
	"github.com/SamMeown/ETL/internal/platform/store"
)

//go:embed schema.json
var indexSchema []byte

func main() {
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
		AppName: "moviesync-esinit",
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

	index := file.Elastic.DSN.Index()
	created, err := st.ES.CreateIndex(ctx, index, indexSchema)
	if err != nil {
		l.Fatal().Err(err).Str("index", index).Msg("index create failed")
	}
	if created {
		l.Info().Str("index", index).Msg("index created")
		return
	}
	l.Info().Str("index", index).Msg("index already exists, nothing to do")
}
