// internal/client/client.go
//
// Go client for the leaderboard API, used by game frontends to submit
// final scores and read boards. Requests carry a bounded timeout and
// failures are surfaced to the caller, never retried. A game that cannot
// reach the network completes normally and simply skips the online entry.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/emojitapper/backend/internal/game"
	"github.com/emojitapper/backend/internal/leaderboard"
)

const (
	requestTimeout = 30 * time.Second
	idleTimeout    = 60 * time.Second
)

// Client talks to one leaderboard deployment on behalf of one game and
// platform.
type Client struct {
	BaseURL  string
	Game     string
	Platform string

	httpClient *http.Client
}

// New constructs a Client with the standard timeouts.
func New(baseURL, gameName, platform string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Game:     gameName,
		Platform: platform,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				IdleConnTimeout: idleTimeout,
			},
		},
	}
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

// SubmitScore posts one final score and returns the stored document id.
func (c *Client) SubmitScore(ctx context.Context, mode game.Mode, player string, score int) (string, error) {
	body, err := json.Marshal(leaderboard.Submission{
		Game:     c.Game,
		Mode:     string(mode),
		Platform: c.Platform,
		Player:   player,
		Score:    score,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/submitScore", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out submitResponse
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

type topScoresResponse struct {
	Success bool                    `json:"success"`
	Scores  []leaderboard.HighScore `json:"scores"`
	Error   string                  `json:"error"`
}

// TopScores fetches a board's highest scores within a period.
func (c *Client) TopScores(ctx context.Context, mode game.Mode, period leaderboard.Period, limit int) ([]leaderboard.HighScore, error) {
	q := c.boardQuery(mode)
	q.Set("period", string(period))
	q.Set("limit", strconv.Itoa(limit))

	req, err := c.getRequest(ctx, "/getTopScores", q)
	if err != nil {
		return nil, err
	}
	var out topScoresResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Scores, nil
}

type playerBestResponse struct {
	Success    bool                   `json:"success"`
	PlayerBest *leaderboard.HighScore `json:"playerBest"`
	Error      string                 `json:"error"`
}

// PlayerBest fetches the player's single best record; nil when the player
// has no scores on the board.
func (c *Client) PlayerBest(ctx context.Context, mode game.Mode, player string) (*leaderboard.HighScore, error) {
	q := c.boardQuery(mode)
	q.Set("player", player)

	req, err := c.getRequest(ctx, "/getPlayerBest", q)
	if err != nil {
		return nil, err
	}
	var out playerBestResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.PlayerBest, nil
}

type statsResponse struct {
	Success bool              `json:"success"`
	Stats   leaderboard.Stats `json:"stats"`
	Error   string            `json:"error"`
}

// Stats fetches a board's aggregate numbers.
func (c *Client) Stats(ctx context.Context, mode game.Mode) (leaderboard.Stats, error) {
	req, err := c.getRequest(ctx, "/getLeaderboardStats", c.boardQuery(mode))
	if err != nil {
		return leaderboard.Stats{}, err
	}
	var out statsResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return leaderboard.Stats{}, err
	}
	return out.Stats, nil
}

func (c *Client) boardQuery(mode game.Mode) url.Values {
	q := url.Values{}
	q.Set("game", c.Game)
	q.Set("mode", string(mode))
	q.Set("platform", c.Platform)
	return q
}

func (c *Client) getRequest(ctx context.Context, path string, q url.Values) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
}

// do executes the request and decodes the body, turning non-expected
// statuses into errors carrying the server's message when present.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var e struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&e); decodeErr == nil && e.Error != "" {
			return fmt.Errorf("leaderboard: %s (status %d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("leaderboard: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
