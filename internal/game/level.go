// internal/game/level.go
//
// Level configuration for Classic mode. A level fixes the starting clock,
// the self-compounding time bonus fraction, and the points awarded for a
// tapped symbol.

package game

// Level is the pluggable scoring/timing configuration for Classic mode.
type Level interface {
	Name() string
	InitialTime() float64

	// TimeBonus is the fraction of the remaining clock added back after a
	// scoring tap: timeRemaining += timeRemaining * TimeBonus. The bonus
	// compounds and is intentionally unbounded.
	TimeBonus() float64

	PointsForTapping(symbol string) int
}

// BasicLevel: every normal tap scores one point.
type BasicLevel struct{}

func (BasicLevel) Name() string { return "Basic" }
func (BasicLevel) InitialTime() float64 { return 30.0 }
func (BasicLevel) TimeBonus() float64 { return 0.1 }
func (BasicLevel) PointsForTapping(string) int { return 1 }

// SelectiveLevel: only the target symbol scores, but it scores double.
type SelectiveLevel struct {
	Target string
}

// NewSelectiveLevel returns a SelectiveLevel; an empty target defaults
// to the star.
func NewSelectiveLevel(target string) SelectiveLevel {
	if target == "" {
		target = "⭐"
	}
	return SelectiveLevel{Target: target}
}

func (SelectiveLevel) Name() string { return "Selective" }
func (SelectiveLevel) InitialTime() float64 { return 15.0 }
func (SelectiveLevel) TimeBonus() float64 { return 0.15 }

func (l SelectiveLevel) PointsForTapping(symbol string) int {
	if symbol == l.Target {
		return 2
	}
	return 0
}
