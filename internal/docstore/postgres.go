package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"cooptrick/internal/domain"
	"cooptrick/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const gamesChannel = "games_changed"

// Postgres keeps each game as one jsonb row. Transactions take a row lock
// with SELECT FOR UPDATE, so the read-check-write cannot interleave with
// another writer on the same id; commits NOTIFY listeners, who re-read.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &Postgres{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS games (
			id  text PRIMARY KEY,
			doc jsonb NOT NULL
		)`)
	return err
}

func (s *Postgres) Get(ctx context.Context, id string) (domain.Game, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM games WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, false, nil
	}
	if err != nil {
		return domain.Game{}, false, err
	}
	return decode(raw)
}

func (s *Postgres) Subscribe(ctx context.Context, id string, fn func(domain.Game)) (Unsubscribe, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, `LISTEN `+gamesChannel); err != nil {
		conn.Release()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer conn.Release()

		if cur, exists, err := s.Get(subCtx, id); err == nil && exists {
			fn(cur)
		}
		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					logger.Warn("notification wait failed", "game", id, "error", err)
				}
				return
			}
			if n.Payload != id {
				continue
			}
			if cur, exists, err := s.Get(subCtx, id); err == nil && exists {
				fn(cur)
			}
		}
	}()

	return func() { cancel() }, nil
}

func (s *Postgres) Transaction(ctx context.Context, id string, fn TxnFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// the advisory lock also serializes writers racing to create the row,
	// which a row lock alone cannot cover
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, id); err != nil {
		return err
	}

	var cur domain.Game
	exists := true

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM games WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		exists = false
	case err != nil:
		return err
	default:
		if cur, _, err = decode(raw); err != nil {
			return err
		}
	}

	next, write, err := fn(cur, exists)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	buf, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO games (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, id, buf); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, gamesChannel, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Close() {
	s.pool.Close()
}
