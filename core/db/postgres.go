package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fbz-tec/docvault/internal/logger"
)

// PgConnector opens a pgx connection pool.
type PgConnector struct {
	MaxConns int32
}

// Connect parses uri, bounds the pool and pings once.
func (p PgConnector) Connect(ctx context.Context, uri string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(uri)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if p.MaxConns > 0 {
		cfg.MaxConns = p.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	logger.Debug("Pool created (maxConns=%d), verifying connectivity (ping)...", cfg.MaxConns)

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug("Database ping successful")
	return pool, nil
}

// Disconnect closes every pooled connection.
func (p PgConnector) Disconnect(_ context.Context, pool *pgxpool.Pool) error {
	if pool != nil {
		pool.Close()
	}
	return nil
}

func timeUntil(deadline time.Time) time.Duration {
	d := time.Until(deadline)
	if d < time.Millisecond {
		return time.Millisecond
	}
	return d
}
