// internal/leaderboard/leaderboard.go
//
// Domain types for the online leaderboard.
// Defines:
//   - HighScore: one append-only score document.
//   - Submission: validated input for submitScore.
//   - Period: time window for top-score queries.
//   - Stats: aggregate numbers for one board.
//
// Records are never updated or deleted; duplicates per player are expected
// and retained.

package leaderboard

import (
	"errors"
	"strings"
	"time"
)

// Field length bounds, shared with client-side validation.
const (
	MaxPlayerLen   = 50
	MaxGameLen     = 100
	MaxModeLen     = 50
	MaxPlatformLen = 50
)

// Validation errors returned by Submission.Validate and ParsePeriod.
// Messages double as user-facing API error text.
var (
	ErrGameRequired     = errors.New("Game name is required and must be a non-empty string")
	ErrModeRequired     = errors.New("Game mode is required and must be a non-empty string")
	ErrPlatformRequired = errors.New("Platform is required and must be a non-empty string")
	ErrPlayerRequired   = errors.New("Player name is required and must be a non-empty string")
	ErrScoreInvalid     = errors.New("Score must be a non-negative integer")
	ErrPlayerTooLong    = errors.New("Player name must be 50 characters or less")
	ErrGameTooLong      = errors.New("Game name must be 100 characters or less")
	ErrModeTooLong      = errors.New("Game mode must be 50 characters or less")
	ErrPlatformTooLong  = errors.New("Platform must be 50 characters or less")
	ErrInvalidPeriod    = errors.New("Invalid period. Must be one of: day, week, month, all_time")
	ErrInvalidLimit     = errors.New("Limit must be between 1 and 100")
)

// HighScore is one stored score document.
type HighScore struct {
	ID          string    `json:"id"`
	Game        string    `json:"game"`
	Mode        string    `json:"mode"`
	Platform    string    `json:"platform"`
	Player      string    `json:"player"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Stats aggregates one board's full score set.
type Stats struct {
	TotalScores   int `json:"totalScores"`
	UniquePlayers int `json:"uniquePlayers"`
	HighestScore  int `json:"highestScore"`
	AverageScore  int `json:"averageScore"`
}

// Submission is the payload of a submitScore call.
type Submission struct {
	Game     string `json:"game"`
	Mode     string `json:"mode"`
	Platform string `json:"platform"`
	Player   string `json:"player"`
	Score    int    `json:"score"`
}

// Validate checks field presence, length bounds, and score sign. Fields
// are trimmed in place on success.
func (s *Submission) Validate() error {
	s.Game = strings.TrimSpace(s.Game)
	s.Mode = strings.TrimSpace(s.Mode)
	s.Platform = strings.TrimSpace(s.Platform)
	s.Player = strings.TrimSpace(s.Player)

	switch {
	case s.Game == "":
		return ErrGameRequired
	case s.Mode == "":
		return ErrModeRequired
	case s.Platform == "":
		return ErrPlatformRequired
	case s.Player == "":
		return ErrPlayerRequired
	case s.Score < 0:
		return ErrScoreInvalid
	case len(s.Player) > MaxPlayerLen:
		return ErrPlayerTooLong
	case len(s.Game) > MaxGameLen:
		return ErrGameTooLong
	case len(s.Mode) > MaxModeLen:
		return ErrModeTooLong
	case len(s.Platform) > MaxPlatformLen:
		return ErrPlatformTooLong
	}
	return nil
}

// Period is the time window of a top-scores query.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodAllTime Period = "all_time"
)

// ParsePeriod maps a query parameter to a Period. Empty input defaults to
// all_time.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodAllTime:
		return Period(s), nil
	case "":
		return PeriodAllTime, nil
	}
	return "", ErrInvalidPeriod
}

// Start returns the inclusive lower bound of the window anchored at now:
// local midnight for day, midnight seven days back for week, midnight one
// calendar month back for month. All-time returns the zero time, meaning
// no filter.
func (p Period) Start(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodDay:
		return midnight
	case PeriodWeek:
		return midnight.AddDate(0, 0, -7)
	case PeriodMonth:
		return midnight.AddDate(0, -1, 0)
	}
	return time.Time{}
}
