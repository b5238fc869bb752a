package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NewConnection opens the shared pool. Every repository call acquires a connection from it
// for the duration of one statement or transaction and returns it on every exit path.
func NewConnection(ctx context.Context, databaseURL string, log *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("invalid DATABASE_URL")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 15
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unexpected error while connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unexpected error while pinging database: %w", err)
	}

	log.Infow("PostgreSQL connection pool ready", "maxConns", config.MaxConns)
	return pool, nil
}
