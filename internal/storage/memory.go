// internal/storage/memory.go
//
// In-memory implementation of Store. Used in tests and when durability is
// not required.
//
// Characteristics:
//   - Documents held in a slice guarded by an RWMutex.
//   - Query results are copies; callers never see internal state.
//   - State is lost when the process restarts.

package storage

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emojitapper/backend/internal/leaderboard"
)

type memory struct {
	mu   sync.RWMutex
	docs []leaderboard.HighScore
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore() Store {
	return &memory{}
}

func (m *memory) Insert(ctx context.Context, hs leaderboard.HighScore) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hs.ID = uuid.NewString()
	m.docs = append(m.docs, hs)
	return hs.ID, nil
}

// filtered returns copies of the documents matching f, optionally bounded
// below by since.
func (m *memory) filtered(f Filter, since time.Time) []leaderboard.HighScore {
	var out []leaderboard.HighScore
	for _, d := range m.docs {
		if d.Game != f.Game || d.Mode != f.Mode || d.Platform != f.Platform {
			continue
		}
		if !since.IsZero() && d.SubmittedAt.Before(since) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (m *memory) TopScores(ctx context.Context, f Filter, since time.Time, limit int) ([]leaderboard.HighScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.filtered(f, since)
	sortByScore(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memory) PlayerBest(ctx context.Context, f Filter, player string) (*leaderboard.HighScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best []leaderboard.HighScore
	for _, d := range m.filtered(f, time.Time{}) {
		if d.Player == player {
			best = append(best, d)
		}
	}
	if len(best) == 0 {
		return nil, nil
	}
	sortByScore(best)
	top := best[0]
	return &top, nil
}

func (m *memory) Stats(ctx context.Context, f Filter) (leaderboard.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.filtered(f, time.Time{})
	var st leaderboard.Stats
	if len(docs) == 0 {
		return st, nil
	}

	players := make(map[string]bool, len(docs))
	sum := 0
	for _, d := range docs {
		players[d.Player] = true
		sum += d.Score
		if d.Score > st.HighestScore {
			st.HighestScore = d.Score
		}
	}
	st.TotalScores = len(docs)
	st.UniquePlayers = len(players)
	st.AverageScore = int(math.Round(float64(sum) / float64(len(docs))))
	return st, nil
}

func (m *memory) Recent(ctx context.Context, f Filter, limit int) ([]leaderboard.HighScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.filtered(f, time.Time{})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortByScore applies the store-wide stable ordering: score desc,
// submitted_at asc, id asc.
func sortByScore(docs []leaderboard.HighScore) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		if !docs[i].SubmittedAt.Equal(docs[j].SubmittedAt) {
			return docs[i].SubmittedAt.Before(docs[j].SubmittedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
