// internal/storage/postgres.go
//
// Postgres implementation of Store over a pgx pool. Selected when
// DATABASE_URL is set; schema mirrors sql/001_highscores.sql with native
// timestamptz.

package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emojitapper/backend/internal/leaderboard"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps a connected pgx pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the highscores table if it does not exist. Postgres
// deployments have no file-migration step, so the store owns its DDL.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS highscores (
			id           TEXT PRIMARY KEY,
			game         TEXT NOT NULL,
			mode         TEXT NOT NULL,
			platform     TEXT NOT NULL,
			player       TEXT NOT NULL,
			score        BIGINT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_highscores_board
			ON highscores (game, mode, platform, score DESC);
		CREATE INDEX IF NOT EXISTS idx_highscores_player
			ON highscores (game, mode, platform, player);
	`)
	if err != nil {
		return fmt.Errorf("ensure highscores schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, hs leaderboard.HighScore) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO highscores (id, game, mode, platform, player, score, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, hs.Game, hs.Mode, hs.Platform, hs.Player, hs.Score, hs.SubmittedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert highscore: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) TopScores(ctx context.Context, f Filter, since time.Time, limit int) ([]leaderboard.HighScore, error) {
	q := `
		SELECT id, game, mode, platform, player, score, submitted_at
		FROM highscores
		WHERE game=$1 AND mode=$2 AND platform=$3`
	args := []any{f.Game, f.Mode, f.Platform}
	if !since.IsZero() {
		q += ` AND submitted_at >= $4`
		args = append(args, since.UTC())
	}
	q += fmt.Sprintf(` ORDER BY score DESC, submitted_at ASC, id ASC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()
	return collectScores(rows)
}

func (s *PostgresStore) PlayerBest(ctx context.Context, f Filter, player string) (*leaderboard.HighScore, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, game, mode, platform, player, score, submitted_at
		FROM highscores
		WHERE game=$1 AND mode=$2 AND platform=$3 AND player=$4
		ORDER BY score DESC, submitted_at ASC, id ASC
		LIMIT 1`,
		f.Game, f.Mode, f.Platform, player,
	)
	var hs leaderboard.HighScore
	err := row.Scan(&hs.ID, &hs.Game, &hs.Mode, &hs.Platform, &hs.Player, &hs.Score, &hs.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query player best: %w", err)
	}
	return &hs, nil
}

func (s *PostgresStore) Stats(ctx context.Context, f Filter) (leaderboard.Stats, error) {
	var st leaderboard.Stats
	var highest *int64
	var avg *float64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT player), MAX(score), AVG(score)
		FROM highscores
		WHERE game=$1 AND mode=$2 AND platform=$3`,
		f.Game, f.Mode, f.Platform,
	).Scan(&st.TotalScores, &st.UniquePlayers, &highest, &avg)
	if err != nil {
		return leaderboard.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if highest != nil {
		st.HighestScore = int(*highest)
	}
	if avg != nil {
		st.AverageScore = int(math.Round(*avg))
	}
	return st, nil
}

func (s *PostgresStore) Recent(ctx context.Context, f Filter, limit int) ([]leaderboard.HighScore, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, game, mode, platform, player, score, submitted_at
		FROM highscores
		WHERE game=$1 AND mode=$2 AND platform=$3
		ORDER BY submitted_at DESC, id ASC
		LIMIT $4`,
		f.Game, f.Mode, f.Platform, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return collectScores(rows)
}

func collectScores(rows pgx.Rows) ([]leaderboard.HighScore, error) {
	var out []leaderboard.HighScore
	for rows.Next() {
		var hs leaderboard.HighScore
		if err := rows.Scan(&hs.ID, &hs.Game, &hs.Mode, &hs.Platform, &hs.Player, &hs.Score, &hs.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, hs)
	}
	return out, rows.Err()
}
