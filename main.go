package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/config"
	"github.com/robalobadob/snake/internal/httpserver"
	"github.com/robalobadob/snake/internal/layouts"
	"github.com/robalobadob/snake/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if err := layouts.Init(cfg.LayoutFile); err != nil {
		log.Fatal().Err(err).Str("file", cfg.LayoutFile).Msg("failed to load layouts")
	}
	if _, err := layouts.Default().Get(cfg.Layout); err != nil {
		log.Fatal().Err(err).Msg("default layout")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	mem := store.NewMemoryStore()
	defer mem.Close()
	go store.RunSweeper(ctx, mem, cfg.SweepInterval(), cfg.SessionTTL)

	srv := httpserver.New(ctx, mem, layouts.Default(), cfg)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("layout", cfg.Layout).
		Int("width", cfg.Game.Width).
		Int("height", cfg.Game.Height).
		Dur("tick", cfg.Game.Tick).
		Msg("starting snake server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	<-ctx.Done()
	log.Info().Int("sessions", mem.Len()).Msg("server stopped")
}
