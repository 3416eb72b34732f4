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
	"github.com/shopspring/decimal"

	"github.com/Simplici0/controlcenter/internal/config"
	"github.com/Simplici0/controlcenter/internal/db"
	"github.com/Simplici0/controlcenter/internal/migrations"
	"github.com/Simplici0/controlcenter/internal/seed"
	"github.com/Simplici0/controlcenter/internal/store"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	log.Logger = logger
	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("env", cfg.Env).Msg("invalid configuration")
	}
	ctx := logger.WithContext(context.Background())

	// API clients get numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	backend, closeBackend, err := store.Open(ctx, store.Options{
		Driver:      cfg.StorageDriver,
		SQLite:      database,
		RedisURL:    cfg.RedisURL,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage backend")
	}
	defer func() {
		if err := closeBackend(); err != nil {
			log.Error().Err(err).Msg("close storage backend")
		}
	}()
	repo := store.NewRepository(backend)

	stats, err := seed.Run(ctx, database, repo, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}
	log.Info().Int("inserts", stats.Inserts).Int("updates", stats.Updates).Msg("seed complete")

	srv := newServer(repo, newAuthService(database, cfg.SessionSecret, !cfg.IsDev()))
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpSrv.Addr).Str("storage", cfg.StorageDriver).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
