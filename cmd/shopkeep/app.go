package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/shopkeep/internal/accounts"
	"github.com/Veraticus/shopkeep/internal/auth"
	"github.com/Veraticus/shopkeep/internal/catalog"
	"github.com/Veraticus/shopkeep/internal/config"
	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/storage"
	"github.com/spf13/viper"
)

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	store    *storage.SQLStorage
	clients  *accounts.Clients
	sessions *auth.Sessions
	catalog  *catalog.Service
	books    *ledger.Service
	logger   *slog.Logger
}

// initApp loads the configuration held by viper and opens the application.
// The schema is migrated when database.auto_migrate is set.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, slog.Default(), cfg.Database.AutoMigrate)
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*app, error) {
	store, err := storage.Open(ctx, storage.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	provider := auth.NewLocalProvider(store, auth.Options{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		BcryptCost:        cfg.Auth.BcryptCost,
	}, logger)
	sessions := auth.NewSessions(store, cfg.Auth.SessionTTL)

	return &app{
		cfg:      cfg,
		store:    store,
		clients:  accounts.NewClients(store, provider, sessions, logger),
		sessions: sessions,
		catalog:  catalog.New(store, logger),
		books:    ledger.New(store, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
