// internal/storage/store.go
//
// Persistence interface for the leaderboard's highscores collection.
// Implementations: memory (tests/dev), sqlite (default), postgres
// (selected by DATABASE_URL).
//
// The collection is append-only: stores implement no update or delete.
// Every query orders ties identically (score desc, submitted_at asc, id
// asc) so repeated reads over fixed data return identical lists.

package storage

import (
	"context"
	"time"

	"github.com/emojitapper/backend/internal/leaderboard"
)

// Filter selects one board: exact match on game, mode, and platform.
type Filter struct {
	Game     string
	Mode     string
	Platform string
}

// Store is the persistence interface for score documents.
type Store interface {
	// Insert appends one document and returns its assigned id. The
	// document's SubmittedAt must already be set by the caller.
	Insert(ctx context.Context, hs leaderboard.HighScore) (string, error)

	// TopScores returns the highest scores for a board, newest window
	// first filtered by submitted_at >= since (zero since means no time
	// filter), truncated to limit.
	TopScores(ctx context.Context, f Filter, since time.Time, limit int) ([]leaderboard.HighScore, error)

	// PlayerBest returns the player's single highest score on a board, or
	// nil if the player has none.
	PlayerBest(ctx context.Context, f Filter, player string) (*leaderboard.HighScore, error)

	// Stats aggregates the board's full score set. An empty set yields
	// all-zero stats.
	Stats(ctx context.Context, f Filter) (leaderboard.Stats, error)

	// Recent returns the newest submissions for a board, for operator
	// inspection.
	Recent(ctx context.Context, f Filter, limit int) ([]leaderboard.HighScore, error)
}
