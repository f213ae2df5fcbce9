// internal/game/types.go
//
// Shared model for the game-mode engines.
// Defines:
//   - GameEmoji: one tappable entity, immutable after creation.
//   - EmojiKind: gameplay effect category of an entity.
//   - Mode: the selectable game modes.
//   - Engine: the contract every mode implements.
//   - ScoreStore: small persistence port for per-mode high scores.
//
// Entities carry no position; the presentation layer owns placement and
// hit-testing and calls back into the engine with the tapped entity id.

package game

import (
	"sync"

	"github.com/google/uuid"
)

// Mode identifies a selectable game mode.
type Mode string

const (
	ModeClassic     Mode = "Classic"
	ModePenguinBall Mode = "Penguin Ball"
)

// Description is the menu copy for a mode.
func (m Mode) Description() string {
	switch m {
	case ModeClassic:
		return "Tap emojis to score points and earn time"
	case ModePenguinBall:
		return "Find the penguin among many emojis before they vanish"
	}
	return ""
}

// EmojiKind is the gameplay effect category of an entity.
type EmojiKind int

const (
	KindNormal EmojiKind = iota
	KindSkull            // ends the game immediately
	KindHourglass        // adds time
	KindCherry           // bonus points
	KindPlus             // grows the visual size multiplier
	KindMinus            // shrinks the visual size multiplier
	KindResetSize        // restores visual state to defaults
	KindHide             // drops opacity
	KindTimePenaltySmall // subtracts a fixed amount of time
	KindTimePenaltyLarge // halves the remaining time
)

// GameEmoji is one on-screen tappable entity. Immutable once created; the
// active list is replaced wholesale on every regeneration so the
// presentation layer can diff snapshots for removal animations. Ids are
// never reused for a different entity.
type GameEmoji struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Kind           EmojiKind `json:"kind"`
	RenderPriority int       `json:"renderPriority"`
}

func newEmoji(symbol string, kind EmojiKind, priority int) GameEmoji {
	return GameEmoji{
		ID:             uuid.NewString(),
		Symbol:         symbol,
		Kind:           kind,
		RenderPriority: priority,
	}
}

// VisualState is the presentation-facing scalar state mutated by the
// Plus/Minus/ResetSize/Hide kinds. Engines clamp SizeMultiplier to
// [0.1, 3.0] and Opacity to [0.1, 1.0].
type VisualState struct {
	SizeMultiplier float64 `json:"sizeMultiplier"`
	Opacity        float64 `json:"opacity"`
}

func defaultVisualState() VisualState {
	return VisualState{SizeMultiplier: 1.0, Opacity: 1.0}
}

// EndSummary is delivered exactly once per game through the game-ended
// callback. RoundScores is populated by round-based modes only.
type EndSummary struct {
	Mode        Mode
	Score       int
	HighScore   int
	RoundScores []int
}

// Engine is the contract shared by both game modes. Engines are
// single-threaded and cooperative: the caller serializes Tick and Tap, and
// all schedules advance inside Tick, so teardown can never leak a timer.
type Engine interface {
	Mode() Mode
	Score() int
	HighScore() int
	Active() bool

	// Emojis returns the current entity snapshot. The slice is replaced,
	// not mutated, on regeneration.
	Emojis() []GameEmoji

	// StateText is the mode-specific status line (countdown, round info).
	StateText() string

	Start()
	End()

	// Tap applies the effect of tapping the entity with the given id.
	// Unknown ids and taps while inactive are silently ignored: taps can
	// race entity regeneration and that is not an error.
	Tap(id string)

	// Tick advances engine time by delta seconds. Callers drive this at a
	// 0.1s cadence from their platform timer.
	Tick(delta float64)

	// ProceedToNextRound resumes a round-based mode after the caller has
	// finished its between-round presentation. No-op for Classic.
	ProceedToNextRound()

	// PauseSchedules / ResumeSchedules suspend periodic entity removal
	// during tap-reaction animations. Both are idempotent.
	PauseSchedules()
	ResumeSchedules()

	ResetHighScore()

	SetOnEmojisChanged(fn func())
	SetOnGameEnded(fn func(EndSummary))
}

// ScoreStore persists one integer high score per mode, keeping engines
// decoupled from any concrete storage mechanism.
type ScoreStore interface {
	LoadHighScore(mode Mode) int
	SaveHighScore(mode Mode, score int)
}

// memoryScoreStore is a process-local ScoreStore.
type memoryScoreStore struct {
	mu     sync.Mutex
	scores map[Mode]int
}

// NewMemoryScoreStore returns an in-memory ScoreStore, suitable for tests
// and for platforms that persist elsewhere.
func NewMemoryScoreStore() ScoreStore {
	return &memoryScoreStore{scores: make(map[Mode]int)}
}

func (s *memoryScoreStore) LoadHighScore(mode Mode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[mode]
}

func (s *memoryScoreStore) SaveHighScore(mode Mode, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[mode] = score
}
