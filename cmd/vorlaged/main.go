package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hauswerk/vorlage/api"
	"github.com/hauswerk/vorlage/store"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

func main() {
	addr := envOr("VORLAGE_ADDR", ":8080")
	if envOr("VORLAGE_ENV", "development") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	server := api.NewServer(store.NewMemory(), log.Logger)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
	}

	waitGroup, ctx := errgroup.WithContext(ctx)

	waitGroup.Go(func() error {
		log.Info().Msgf("start HTTP server at %s", addr)

		err := httpServer.ListenAndServe()
		if err != nil {
			// ErrServerClosed is returned once shutdown begins, which is
			// normal.
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			log.Error().Err(err).Msg("cannot start HTTP server")
		}
		return err
	})

	waitGroup.Go(func() error {
		<-ctx.Done()

		log.Info().Msg("HTTP server: graceful shutdown")

		toCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := httpServer.Shutdown(toCtx)
		if err != nil {
			log.Error().Err(err).Msg("cannot shutdown HTTP server gracefully")
		}

		log.Info().Msg("server is stopped")
		return err
	})

	if err := waitGroup.Wait(); err != nil {
		log.Fatal().Err(err).Msg("error from wait group")
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
