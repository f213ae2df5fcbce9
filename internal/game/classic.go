// internal/game/classic.go
//
// Classic mode: a countdown-driven tap game. Tapping normal emojis scores
// points and feeds the clock; special kinds add time or bonus points,
// apply visual effects or penalties, or end the game outright (skull).
//
// The engine is advanced by the caller: Tick(0.1) at a fixed cadence from
// the platform timer, Tap(id) on resolved hits. No goroutines, no internal
// timers.

package game

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	classicMaxOnScreen  = 50
	classicHourglassAdd = 5.0
	classicCherryAdd    = 2
	classicPenaltySmall = 3.0
	classicSizeStep     = 0.25
)

var _ Engine = (*Classic)(nil)

var classicNormalSymbols = []string{
	"😀", "😊", "😂", "🥰", "😎", "🤔", "😮", "😋", "🙂",
	"😆", "😍", "🤗", "😴", "🤯", "😇",
}

// Classic implements Engine for Classic mode.
type Classic struct {
	level  Level
	store  ScoreStore
	rng    *rand.Rand
	emojis []GameEmoji

	score         int
	timeRemaining float64
	active        bool
	ended         bool
	highScore     int
	visual        VisualState

	onEmojisChanged func()
	onGameEnded     func(EndSummary)
}

// NewClassic builds a Classic engine on the given level, loading the
// persisted high score from store.
func NewClassic(level Level, store ScoreStore) *Classic {
	return &Classic{
		level:     level,
		store:     store,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		highScore: store.LoadHighScore(ModeClassic),
		visual:    defaultVisualState(),
	}
}

func (c *Classic) Mode() Mode { return ModeClassic }
func (c *Classic) Score() int { return c.score }
func (c *Classic) HighScore() int { return c.highScore }
func (c *Classic) Active() bool { return c.active }
func (c *Classic) Emojis() []GameEmoji { return c.emojis }

// TimeRemaining reports the seconds left on the clock.
func (c *Classic) TimeRemaining() float64 { return c.timeRemaining }

// Visual reports the current presentation-facing scalar state.
func (c *Classic) Visual() VisualState { return c.visual }

// StateText renders the countdown with one decimal, as shown in the HUD.
func (c *Classic) StateText() string {
	return fmt.Sprintf("%.1f", c.timeRemaining)
}

func (c *Classic) SetOnEmojisChanged(fn func()) { c.onEmojisChanged = fn }
func (c *Classic) SetOnGameEnded(fn func(EndSummary)) { c.onGameEnded = fn }

// Start resets score, clock and visual state, activates the game, and
// produces the first entity snapshot.
func (c *Classic) Start() {
	c.score = 0
	c.timeRemaining = c.level.InitialTime()
	c.active = true
	c.ended = false
	c.visual = defaultVisualState()
	c.regenerate()
	c.notifyEmojisChanged()
}

// End deactivates the game, reconciles and persists the high score, and
// fires the game-ended event. Safe to call more than once; the event is
// delivered at most once per game.
func (c *Classic) End() {
	if c.ended {
		return
	}
	c.active = false
	c.ended = true
	if c.score > c.highScore {
		c.highScore = c.score
		c.store.SaveHighScore(ModeClassic, c.highScore)
	}
	if c.onGameEnded != nil {
		c.onGameEnded(EndSummary{Mode: ModeClassic, Score: c.score, HighScore: c.highScore})
	}
}

// Tick advances the countdown. The game ends the moment the clock reaches
// zero.
func (c *Classic) Tick(delta float64) {
	if !c.active {
		return
	}
	c.timeRemaining -= delta
	if c.timeRemaining <= 0 {
		c.timeRemaining = 0
		c.End()
	}
}

// Tap applies the tapped entity's effect. The id is looked up in the
// current snapshot; ids from a previous snapshot are ignored.
func (c *Classic) Tap(id string) {
	if !c.active {
		return
	}
	e, ok := c.find(id)
	if !ok {
		return
	}

	switch e.Kind {
	case KindNormal:
		points := c.level.PointsForTapping(e.Symbol)
		c.score += points
		if points > 0 {
			c.timeRemaining += c.timeRemaining * c.level.TimeBonus()
		}
	case KindSkull:
		c.End()
		return
	case KindHourglass:
		c.timeRemaining += classicHourglassAdd
	case KindCherry:
		c.score += classicCherryAdd
	case KindPlus:
		c.visual.SizeMultiplier = clamp(c.visual.SizeMultiplier+classicSizeStep, 0.1, 3.0)
	case KindMinus:
		c.visual.SizeMultiplier = clamp(c.visual.SizeMultiplier-classicSizeStep, 0.1, 3.0)
	case KindResetSize:
		c.visual = defaultVisualState()
	case KindHide:
		c.visual.Opacity = 0.25
	case KindTimePenaltySmall:
		c.timeRemaining -= classicPenaltySmall
	case KindTimePenaltyLarge:
		c.timeRemaining /= 2
	}

	if c.timeRemaining <= 0 {
		c.timeRemaining = 0
		c.End()
		return
	}

	c.regenerate()
	c.notifyEmojisChanged()
}

// ProceedToNextRound is a no-op: Classic has no rounds.
func (c *Classic) ProceedToNextRound() {}

// PauseSchedules is a no-op: Classic has no removal schedule.
func (c *Classic) PauseSchedules() {}

// ResumeSchedules is a no-op: Classic has no removal schedule.
func (c *Classic) ResumeSchedules() {}

// ResetHighScore zeroes the persisted high score for this mode.
func (c *Classic) ResetHighScore() {
	c.highScore = 0
	c.store.SaveHighScore(ModeClassic, 0)
}

// targetCount grows the population by one entity every two elapsed
// seconds, capped at classicMaxOnScreen. Time bonuses can push the clock
// above the initial time, making elapsed negative; the count floors at 1
// so a snapshot always holds the guaranteed normal entity.
func (c *Classic) targetCount() int {
	elapsed := c.level.InitialTime() - c.timeRemaining
	n := 1 + int(elapsed/2.0)
	if n < 1 {
		n = 1
	}
	if n > classicMaxOnScreen {
		n = classicMaxOnScreen
	}
	return n
}

// regenerate replaces the entity list wholesale. Population policy:
// one guaranteed normal entity, then a weighted draw per slot:
// 40% skull, 10% hourglass (at most one on screen, else normal),
// 10% cherry (at most three, else normal), 40% normal.
func (c *Classic) regenerate() {
	target := c.targetCount()
	next := make([]GameEmoji, 0, target)
	priority := 0

	next = append(next, newEmoji(c.randomNormal(), KindNormal, priority))
	priority++

	hourglasses := 0
	cherries := 0
	for len(next) < target {
		roll := c.rng.Float64()
		switch {
		case roll < 0.4:
			next = append(next, newEmoji("💀", KindSkull, priority))
		case roll < 0.5 && hourglasses < 1:
			next = append(next, newEmoji("⏳", KindHourglass, priority))
			hourglasses++
		case roll >= 0.5 && roll < 0.6 && cherries < 3:
			next = append(next, newEmoji("🍒", KindCherry, priority))
			cherries++
		default:
			next = append(next, newEmoji(c.randomNormal(), KindNormal, priority))
		}
		priority++
	}

	c.emojis = next
}

func (c *Classic) randomNormal() string {
	return classicNormalSymbols[c.rng.Intn(len(classicNormalSymbols))]
}

func (c *Classic) find(id string) (GameEmoji, bool) {
	for _, e := range c.emojis {
		if e.ID == id {
			return e, true
		}
	}
	return GameEmoji{}, false
}

func (c *Classic) notifyEmojisChanged() {
	if c.onEmojisChanged != nil {
		c.onEmojisChanged()
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
