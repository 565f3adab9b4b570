package main

import (
	"context"
	"fmt"
	"log/slog"

	"imsse/internal/entitlement/ports"
	"imsse/internal/entitlement/store"
	"imsse/internal/platform/config"
	"imsse/internal/platform/postgres"
	platformredis "imsse/internal/platform/redis"
)

// backend is an opened store with its connection lifecycle.
type backend struct {
	store ports.Store
	close func() error
	// ping is nil for embedded backends.
	ping func(context.Context) error
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		st, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{store: st, close: st.Close}, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresURL, postgres.Options{}, logger)
		if err != nil {
			return nil, err
		}
		st := store.NewPostgres(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			store: st,
			close: func() error { pool.Close(); return nil },
			ping:  pool.Ping,
		}, nil

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{store: store.NewRedis(client.Client), close: client.Close, ping: client.Health}, nil

	case config.StoreMemory:
		return &backend{store: store.NewInMemoryStore(), close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
