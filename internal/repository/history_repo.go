package repository

import (
	"context"
	"encoding/json"
	"time"

	"cooptrick/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository archives finished games. The document store only keeps
// the terminal marker, so the final hands and claimed missions land here.
type HistoryRepository struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the archive table.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS game_history (
			id          bigserial PRIMARY KEY,
			game_id     text NOT NULL,
			players     jsonb NOT NULL,
			finished_at timestamptz NOT NULL DEFAULT now()
		)`)
	return err
}

type HistoryEntry struct {
	ID         int64           `json:"id"`
	GameID     string          `json:"game_id"`
	Players    []domain.Player `json:"players"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Record stores the final state of a finished game.
func (r *HistoryRepository) Record(ctx context.Context, gameID string, players []domain.Player) error {
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO game_history (game_id, players) VALUES ($1, $2)`,
		gameID, playersJSON)
	return err
}

// Recent returns the latest finished games, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, game_id, players, finished_at
		 FROM game_history
		 ORDER BY finished_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []HistoryEntry
	for rows.Next() {
		var (
			entry       HistoryEntry
			playersJSON []byte
		)
		if err := rows.Scan(&entry.ID, &entry.GameID, &playersJSON, &entry.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(playersJSON, &entry.Players); err != nil {
			return nil, err
		}
		res = append(res, entry)
	}
	return res, rows.Err()
}
