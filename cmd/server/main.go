package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/example/ridepool-client/internal/app"
	"github.com/example/ridepool-client/internal/config"
	"github.com/example/ridepool-client/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build app")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("close app")
		}
	}()

	st, _ := a.Start(ctx)
	log.Info().Str("session", st.Status.String()).Bool("reachable", a.Monitor.State().Reachable).Msg("client core started")

	if err := a.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("proxy stopped")
	}
}
