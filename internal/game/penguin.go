// internal/game/penguin.go
//
// Penguin Ball mode: each round hides a single penguin in a field of
// distractor emojis. After a short grace period distractors start
// disappearing in small batches; finding the penguin while many distractors
// remain scores close to 100, finding it late scores next to nothing.
// Fixed number of rounds per game.
//
// State machine: Idle → Round(n) → [RoundComplete → Round(n+1)]* → Ended.
// The RoundComplete hand-off exists so the presentation layer can run a
// celebration before the next round's entities appear.
//
// The disappearance schedule is an accumulator advanced inside Tick. The
// engine never owns a timer, so ending a game cannot leave a repeating
// callback behind.

package game

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	penguinMaxRounds      = 10
	penguinSymbol         = "🐧"
	penguinGraceSeconds   = 1.0
	penguinRemoveInterval = 0.2
	penguinBatchMin       = 3
	penguinBatchMax       = 5
	penguinMinEntities    = 80
	penguinMaxEntities    = 500
)

var _ Engine = (*PenguinBall)(nil)

var penguinDistractors = []string{
	"😀", "😊", "😂", "🥰", "😎", "🤔", "😮", "😋", "🙂", "😆", "😍", "🤗",
	"😴", "🤯", "😇", "🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨",
	"🐯", "🦁", "🐮", "🐷", "🐸", "🐵", "🐔", "🐦", "🐤", "🦆", "🦅", "🦉",
	"🐺", "🐴", "🦄", "🐝", "🦋", "🐌", "🐢", "🐍", "🦎", "🐙", "🦀", "🐠",
	"🐬", "🐳", "🦈", "🐘", "🦒", "🦘", "🐑", "🦙", "🐐", "🦌", "🦜", "🦩",
}

// PenguinBall implements Engine for Penguin Ball mode.
type PenguinBall struct {
	store ScoreStore
	rng   *rand.Rand

	emojis      []GameEmoji
	targetID    string
	score       int
	active      bool
	ended       bool
	highScore   int
	entityCount int

	currentRound    int
	roundScores     []int
	totalEntities   int
	entitiesLeft    int
	roundComplete   bool

	scheduleRunning bool
	paused          bool
	graceLeft       float64
	removeAccum     float64

	onEmojisChanged func()
	onGameEnded     func(EndSummary)
}

// NewPenguinBall builds a Penguin Ball engine, loading the persisted high
// score from store.
func NewPenguinBall(store ScoreStore) *PenguinBall {
	return &PenguinBall{
		store:       store,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		highScore:   store.LoadHighScore(ModePenguinBall),
		entityCount: penguinMinEntities,
	}
}

func (p *PenguinBall) Mode() Mode { return ModePenguinBall }
func (p *PenguinBall) Score() int { return p.score }
func (p *PenguinBall) HighScore() int { return p.highScore }
func (p *PenguinBall) Active() bool { return p.active }
func (p *PenguinBall) Emojis() []GameEmoji { return p.emojis }

// Round reports the current 1-based round number (0 before Start).
func (p *PenguinBall) Round() int { return p.currentRound }

// RoundScores reports the per-round scores recorded so far.
func (p *PenguinBall) RoundScores() []int { return p.roundScores }

// RoundComplete reports whether the engine is waiting for
// ProceedToNextRound.
func (p *PenguinBall) RoundComplete() bool { return p.roundComplete }

// SetEntityCount sets the per-round entity population from the
// presentation-reported display area, clamped to [80, 500]. Takes effect
// on the next round.
func (p *PenguinBall) SetEntityCount(n int) {
	if n < penguinMinEntities {
		n = penguinMinEntities
	}
	if n > penguinMaxEntities {
		n = penguinMaxEntities
	}
	p.entityCount = n
}

// StateText renders round progress and the points currently on offer.
func (p *PenguinBall) StateText() string {
	if !p.active {
		return ""
	}
	return fmt.Sprintf("Round %d/%d • Points: %d", p.currentRound, penguinMaxRounds, p.possiblePoints())
}

func (p *PenguinBall) SetOnEmojisChanged(fn func()) { p.onEmojisChanged = fn }
func (p *PenguinBall) SetOnGameEnded(fn func(EndSummary)) { p.onGameEnded = fn }

// possiblePoints is the reward for finding the penguin right now:
// proportional to how many entities remain, floor of 1.
func (p *PenguinBall) possiblePoints() int {
	if p.totalEntities == 0 {
		return 1
	}
	pct := float64(p.entitiesLeft) / float64(p.totalEntities)
	n := int(math.Ceil(pct * 100))
	if n < 1 {
		n = 1
	}
	return n
}

// Start resets score and rounds, activates the game, and begins round one.
func (p *PenguinBall) Start() {
	p.score = 0
	p.currentRound = 0
	p.roundScores = nil
	p.active = true
	p.ended = false
	p.paused = false
	p.startNextRound()
}

// End deactivates the game, stops the disappearance schedule, reconciles
// and persists the high score, and fires the game-ended event with the
// final round scores. Delivered at most once per game.
func (p *PenguinBall) End() {
	if p.ended {
		return
	}
	p.active = false
	p.ended = true
	p.stopSchedule()
	if p.score > p.highScore {
		p.highScore = p.score
		p.store.SaveHighScore(ModePenguinBall, p.highScore)
	}
	if p.onGameEnded != nil {
		scores := make([]int, len(p.roundScores))
		copy(scores, p.roundScores)
		p.onGameEnded(EndSummary{
			Mode:        ModePenguinBall,
			Score:       p.score,
			HighScore:   p.highScore,
			RoundScores: scores,
		})
	}
}

// Tick advances the disappearance schedule. The grace delay runs first;
// after it expires a batch of distractors is removed every
// penguinRemoveInterval seconds until only the penguin is left.
func (p *PenguinBall) Tick(delta float64) {
	if !p.active || !p.scheduleRunning || p.paused || p.roundComplete {
		return
	}
	if p.graceLeft > 0 {
		p.graceLeft -= delta
		if p.graceLeft > 0 {
			return
		}
		// carry the overshoot into the removal accumulator
		delta = -p.graceLeft
		p.graceLeft = 0
	}
	p.removeAccum += delta
	for p.removeAccum >= penguinRemoveInterval && p.scheduleRunning {
		p.removeAccum -= penguinRemoveInterval
		p.removeBatch()
	}
}

// Tap scores the round if the penguin was hit. Wrong entities are ignored
// with no penalty; any reaction is purely presentational.
func (p *PenguinBall) Tap(id string) {
	if !p.active || p.roundComplete {
		return
	}
	e, ok := p.find(id)
	if !ok {
		return
	}
	if e.ID != p.targetID {
		return
	}

	roundScore := p.possiblePoints()
	p.score += roundScore
	p.roundScores = append(p.roundScores, roundScore)
	p.stopSchedule()

	if p.currentRound >= penguinMaxRounds {
		p.End()
		return
	}
	p.roundComplete = true
}

// ProceedToNextRound begins the next round after a round-complete
// hand-off. No-op unless a round is actually complete.
func (p *PenguinBall) ProceedToNextRound() {
	if !p.active || !p.roundComplete {
		return
	}
	p.startNextRound()
}

// PauseSchedules suspends distractor removal. Idempotent.
func (p *PenguinBall) PauseSchedules() { p.paused = true }

// ResumeSchedules resumes distractor removal. Idempotent.
func (p *PenguinBall) ResumeSchedules() { p.paused = false }

// ResetHighScore zeroes the persisted high score for this mode.
func (p *PenguinBall) ResetHighScore() {
	p.highScore = 0
	p.store.SaveHighScore(ModePenguinBall, 0)
}

func (p *PenguinBall) startNextRound() {
	p.currentRound++
	p.roundComplete = false
	p.generateRound()
	p.scheduleRunning = true
	p.graceLeft = penguinGraceSeconds
	p.removeAccum = 0
	p.notifyEmojisChanged()
}

// generateRound builds the round's entity list: exactly one penguin with a
// render priority above every distractor, the rest drawn from the
// distractor set, shuffled.
func (p *PenguinBall) generateRound() {
	n := p.entityCount
	p.totalEntities = n
	p.entitiesLeft = n

	next := make([]GameEmoji, 0, n)
	target := newEmoji(penguinSymbol, KindNormal, n+10)
	p.targetID = target.ID
	next = append(next, target)

	for i := 1; i < n; i++ {
		symbol := penguinDistractors[p.rng.Intn(len(penguinDistractors))]
		next = append(next, newEmoji(symbol, KindNormal, i-1))
	}

	p.rng.Shuffle(len(next), func(i, j int) {
		next[i], next[j] = next[j], next[i]
	})
	p.emojis = next
}

// removeBatch removes 3–5 random distractors from the current snapshot.
// The penguin is never removed; once it is the only entity left the
// schedule stops.
func (p *PenguinBall) removeBatch() {
	distractors := 0
	for _, e := range p.emojis {
		if e.ID != p.targetID {
			distractors++
		}
	}
	if distractors == 0 {
		p.stopSchedule()
		return
	}

	count := penguinBatchMin + p.rng.Intn(penguinBatchMax-penguinBatchMin+1)
	if count > distractors {
		count = distractors
	}

	// pick victim indices among distractors only
	doomed := make(map[int]bool, count)
	for len(doomed) < count {
		i := p.rng.Intn(len(p.emojis))
		if p.emojis[i].ID == p.targetID {
			continue
		}
		doomed[i] = true
	}

	next := make([]GameEmoji, 0, len(p.emojis)-count)
	for i, e := range p.emojis {
		if doomed[i] {
			continue
		}
		next = append(next, e)
	}
	p.emojis = next
	p.entitiesLeft -= count

	if len(p.emojis) <= 1 {
		p.stopSchedule()
	}
	p.notifyEmojisChanged()
}

func (p *PenguinBall) stopSchedule() {
	p.scheduleRunning = false
	p.graceLeft = 0
	p.removeAccum = 0
}

func (p *PenguinBall) find(id string) (GameEmoji, bool) {
	for _, e := range p.emojis {
		if e.ID == id {
			return e, true
		}
	}
	return GameEmoji{}, false
}

func (p *PenguinBall) notifyEmojisChanged() {
	if p.onEmojisChanged != nil {
		p.onEmojisChanged()
	}
}
