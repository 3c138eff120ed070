package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"baletrack/infrastructure/argon"
	"baletrack/infrastructure/audit"
	"baletrack/infrastructure/cache"
	"baletrack/infrastructure/collections"
	"baletrack/infrastructure/config"
	"baletrack/infrastructure/directus"
	"baletrack/infrastructure/session"
	"baletrack/infrastructure/sqlite"
)

// app is the wired station shared by every subcommand.
type app struct {
	cfg      *config.Config
	db       *sqlite.DB
	data     *collections.Client
	sessions *session.Manager
	audit    *audit.Service
}

func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	sealer, err := argon.NewSealer(cfg.SessionSecret, nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	remote, err := directus.NewClient(cfg.DirectusURL, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	data := collections.New(remote, cache.NewQueryCache(cfg.CacheTTL))
	sessions := session.NewManager(remote, session.Options{
		Store:         sqlite.NewSessionStore(db, sealer),
		TTL:           cfg.SessionTTL,
		CheckInterval: cfg.ExpiryCheckInterval,
		OnReset:       data.Reset,
	})
	sessions.Restore(ctx)

	return &app{
		cfg:      cfg,
		db:       db,
		data:     data,
		sessions: sessions,
		audit:    audit.NewService(db),
	}, nil
}

// Close stops the expiry watcher and closes the database. A live session
// stays persisted for the next start.
func (a *app) Close() {
	a.sessions.Close()
	if err := a.db.Close(); err != nil {
		slog.Error("close db", slog.Any("err", err))
	}
}

// requireSession fails when no live session was restored.
func (a *app) requireSession() error {
	if !a.sessions.IsAuthenticated() {
		return fmt.Errorf("not signed in; run \"baletrack login\" first")
	}
	return nil
}
