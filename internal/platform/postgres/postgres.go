package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool settings applied on top of the URL.
type Options struct {
	MaxConns int32
	MinConns int32
}

// NewPool connects a pgx pool and verifies it with a ping.
func NewPool(ctx context.Context, url string, opts Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres url is required")
	}
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "connected to postgres",
			"host", poolConfig.ConnConfig.Host,
			"database", poolConfig.ConnConfig.Database,
			"max_conns", poolConfig.MaxConns,
		)
	}
	return pool, nil
}
