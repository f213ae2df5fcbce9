package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPenguin(t *testing.T) (*PenguinBall, *fakeScoreStore) {
	t.Helper()
	store := newFakeScoreStore()
	p := NewPenguinBall(store)
	p.rng = rand.New(rand.NewSource(1))
	return p, store
}

func countTargets(p *PenguinBall) int {
	n := 0
	for _, e := range p.emojis {
		if e.ID == p.targetID {
			n++
		}
	}
	return n
}

func TestPenguin_StartFirstRound(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	require.True(t, p.Active())
	require.Equal(t, 1, p.Round())
	require.Len(t, p.Emojis(), 80)
	require.Equal(t, 1, countTargets(p))
	require.Equal(t, "Round 1/10 • Points: 100", p.StateText())

	target, ok := p.find(p.targetID)
	require.True(t, ok)
	require.Equal(t, "🐧", target.Symbol)
	// the penguin renders above every distractor
	for _, e := range p.Emojis() {
		if e.ID != p.targetID {
			require.Less(t, e.RenderPriority, target.RenderPriority)
		}
	}
}

func TestPenguin_ImmediateFindScoresFull(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()
	p.Tap(p.targetID)

	require.Equal(t, 100, p.Score())
	require.Equal(t, []int{100}, p.RoundScores())
	require.True(t, p.RoundComplete())
	require.True(t, p.Active())
}

func TestPenguin_PossiblePointsFloor(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	p.entitiesLeft = 1
	p.totalEntities = 500
	require.Equal(t, 1, p.possiblePoints())

	p.entitiesLeft = 0
	require.Equal(t, 1, p.possiblePoints())
}

func TestPenguin_WrongTapIsIgnored(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	var distractor GameEmoji
	for _, e := range p.Emojis() {
		if e.ID != p.targetID {
			distractor = e
			break
		}
	}
	before := len(p.Emojis())
	p.Tap(distractor.ID)

	require.Zero(t, p.Score())
	require.False(t, p.RoundComplete())
	require.Len(t, p.Emojis(), before)
}

func TestPenguin_GraceThenRemoval(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	// inside the grace period nothing disappears
	p.Tick(0.5)
	require.Len(t, p.Emojis(), 80)

	// crossing the grace boundary carries the overshoot, still short of
	// a full removal interval
	p.Tick(0.6)
	require.Len(t, p.Emojis(), 80)

	p.Tick(0.1)
	removed := 80 - len(p.Emojis())
	require.GreaterOrEqual(t, removed, 3)
	require.LessOrEqual(t, removed, 5)
	require.Equal(t, 1, countTargets(p))
	require.Equal(t, len(p.Emojis()), p.entitiesLeft)
}

func TestPenguin_ScheduleStopsAtLoneTarget(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	for i := 0; i < 200; i++ {
		p.Tick(0.2)
	}
	require.Len(t, p.Emojis(), 1)
	require.Equal(t, p.targetID, p.Emojis()[0].ID)
	require.False(t, p.scheduleRunning)

	// finding it last is still worth something: ceil(100 * 1/80)
	p.Tap(p.targetID)
	require.Equal(t, []int{2}, p.RoundScores())
}

func TestPenguin_LateFindScoresProportionally(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	p.Tick(1.0)
	for len(p.Emojis()) > 40 {
		p.Tick(0.2)
	}
	want := p.possiblePoints()
	require.Less(t, want, 100)
	p.Tap(p.targetID)
	require.Equal(t, []int{want}, p.RoundScores())
}

func TestPenguin_PauseResume(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()
	p.Tick(1.0) // burn the grace period

	p.PauseSchedules()
	p.PauseSchedules() // idempotent
	p.Tick(5.0)
	require.Len(t, p.Emojis(), 80)

	p.ResumeSchedules()
	p.Tick(0.2)
	require.Less(t, len(p.Emojis()), 80)
}

func TestPenguin_RoundHandOff(t *testing.T) {
	p, _ := newTestPenguin(t)
	p.Start()

	// not complete yet: no-op
	p.ProceedToNextRound()
	require.Equal(t, 1, p.Round())

	p.Tap(p.targetID)
	require.True(t, p.RoundComplete())

	// the schedule is parked during the hand-off
	frozen := len(p.Emojis())
	p.Tick(5.0)
	require.Len(t, p.Emojis(), frozen)

	p.ProceedToNextRound()
	require.Equal(t, 2, p.Round())
	require.False(t, p.RoundComplete())
	require.Len(t, p.Emojis(), 80)
}

func TestPenguin_FullGame(t *testing.T) {
	p, store := newTestPenguin(t)

	var ends []EndSummary
	p.SetOnGameEnded(func(s EndSummary) { ends = append(ends, s) })

	p.Start()
	for round := 1; round <= 10; round++ {
		require.Equal(t, round, p.Round())
		p.Tap(p.targetID)
		if round < 10 {
			p.ProceedToNextRound()
		}
	}

	require.False(t, p.Active())
	require.Len(t, p.RoundScores(), 10)
	require.Equal(t, 1000, p.Score()) // ten immediate finds
	require.Len(t, ends, 1)
	require.Equal(t, []int{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}, ends[0].RoundScores)
	require.Equal(t, 1000, store.scores[ModePenguinBall])

	// a finished game is inert
	p.Tap(p.targetID)
	p.Tick(1.0)
	p.ProceedToNextRound()
	require.False(t, p.Active())
	require.Equal(t, 1000, p.Score())
}

func TestPenguin_SetEntityCountClamps(t *testing.T) {
	p, _ := newTestPenguin(t)

	p.SetEntityCount(10)
	require.Equal(t, 80, p.entityCount)

	p.SetEntityCount(1000)
	require.Equal(t, 500, p.entityCount)

	p.SetEntityCount(200)
	p.Start()
	require.Len(t, p.Emojis(), 200)
	require.Equal(t, "Round 1/10 • Points: 100", p.StateText())
}

func TestPenguin_StateTextInactive(t *testing.T) {
	p, _ := newTestPenguin(t)
	require.Equal(t, "", p.StateText())
}
