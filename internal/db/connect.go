package db

import (
	"context"

	"cooptrick/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the archive database. Only needed when a DATABASE_URL is
// configured; the document store connects on its own.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database connected")
	return pool, nil
}
