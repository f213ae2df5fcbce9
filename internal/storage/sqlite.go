// internal/storage/sqlite.go
//
// SQLite implementation of Store over database/sql. The default backend:
// the server opens the database with WAL and a busy timeout (see db.go at
// the repo root) and applies the sql/ migrations before handing the handle
// here.
//
// Timestamps are stored as fixed-width UTC strings (nanoseconds always
// zero-padded) so the lexical comparisons in WHERE and ORDER BY clauses
// match chronological order.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/emojitapper/backend/internal/leaderboard"
)

// sqliteTimeLayout pads fractional seconds to nine digits. RFC3339Nano
// trims trailing zeros, which breaks lexical ordering of the stored
// strings.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an opened, migrated SQLite handle.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Insert(ctx context.Context, hs leaderboard.HighScore) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO highscores (id, game, mode, platform, player, score, submitted_at)
		VALUES (?,?,?,?,?,?,?)`,
		id, hs.Game, hs.Mode, hs.Platform, hs.Player, hs.Score,
		hs.SubmittedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert highscore: %w", err)
	}
	return id, nil
}

func (s *sqliteStore) TopScores(ctx context.Context, f Filter, since time.Time, limit int) ([]leaderboard.HighScore, error) {
	q := `
		SELECT id, game, mode, platform, player, score, submitted_at
		FROM highscores
		WHERE game=? AND mode=? AND platform=?`
	args := []any{f.Game, f.Mode, f.Platform}
	if !since.IsZero() {
		q += ` AND submitted_at >= ?`
		args = append(args, since.UTC().Format(sqliteTimeLayout))
	}
	q += ` ORDER BY score DESC, submitted_at ASC, id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

func (s *sqliteStore) PlayerBest(ctx context.Context, f Filter, player string) (*leaderboard.HighScore, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game, mode, platform, player, score, submitted_at
		FROM highscores
		WHERE game=? AND mode=? AND platform=? AND player=?
		ORDER BY score DESC, submitted_at ASC, id ASC
		LIMIT 1`,
		f.Game, f.Mode, f.Platform, player,
	)
	hs, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query player best: %w", err)
	}
	return &hs, nil
}

func (s *sqliteStore) Stats(ctx context.Context, f Filter) (leaderboard.Stats, error) {
	var st leaderboard.Stats
	var avg sql.NullFloat64
	var highest sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT player), MAX(score), AVG(score)
		FROM highscores
		WHERE game=? AND mode=? AND platform=?`,
		f.Game, f.Mode, f.Platform,
	).Scan(&st.TotalScores, &st.UniquePlayers, &highest, &avg)
	if err != nil {
		return leaderboard.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if highest.Valid {
		st.HighestScore = int(highest.Int64)
	}
	if avg.Valid {
		st.AverageScore = int(math.Round(avg.Float64))
	}
	return st, nil
}

func (s *sqliteStore) Recent(ctx context.Context, f Filter, limit int) ([]leaderboard.HighScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game, mode, platform, player, score, submitted_at
		FROM highscores
		WHERE game=? AND mode=? AND platform=?
		ORDER BY submitted_at DESC, id ASC
		LIMIT ?`,
		f.Game, f.Mode, f.Platform, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return scanScores(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(r rowScanner) (leaderboard.HighScore, error) {
	var hs leaderboard.HighScore
	var submitted string
	if err := r.Scan(&hs.ID, &hs.Game, &hs.Mode, &hs.Platform, &hs.Player, &hs.Score, &submitted); err != nil {
		return leaderboard.HighScore{}, err
	}
	t, err := time.Parse(sqliteTimeLayout, submitted)
	if err != nil {
		return leaderboard.HighScore{}, fmt.Errorf("parse submitted_at: %w", err)
	}
	hs.SubmittedAt = t
	return hs, nil
}

func scanScores(rows *sql.Rows) ([]leaderboard.HighScore, error) {
	var out []leaderboard.HighScore
	for rows.Next() {
		hs, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, hs)
	}
	return out, rows.Err()
}
