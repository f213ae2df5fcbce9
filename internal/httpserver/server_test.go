package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emojitapper/backend/internal/leaderboard"
	"github.com/emojitapper/backend/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	s := New(store, nil)
	s.now = func() time.Time { return testNow }
	return s, store
}

func doRequest(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, r)
	return w
}

func submitBody(player string, score int) []byte {
	b, _ := json.Marshal(map[string]any{
		"game":     "EmojiTapper",
		"mode":     "Classic",
		"platform": "ios",
		"player":   player,
		"score":    score,
	})
	return b
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func hsFor(player string, score int, at time.Time) leaderboard.HighScore {
	return leaderboard.HighScore{
		Game:        "EmojiTapper",
		Mode:        "Classic",
		Platform:    "ios",
		Player:      player,
		Score:       score,
		SubmittedAt: at,
	}
}

const boardQuery = "game=EmojiTapper&mode=Classic&platform=ios"

func TestSubmitScore(t *testing.T) {
	s, store := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", 42))
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["id"])

	top, err := store.TopScores(context.Background(),
		storage.Filter{Game: "EmojiTapper", Mode: "Classic", Platform: "ios"}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "alice", top[0].Player)
	require.Equal(t, 42, top[0].Score)
	require.Equal(t, testNow, top[0].SubmittedAt)
}

func TestSubmitScore_NegativeScoreRejected(t *testing.T) {
	s, store := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", -5))
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Score must be a non-negative integer", body["error"])

	// the rejected submission leaves no document behind
	st, err := store.Stats(context.Background(),
		storage.Filter{Game: "EmojiTapper", Mode: "Classic", Platform: "ios"})
	require.NoError(t, err)
	require.Zero(t, st.TotalScores)
}

func TestSubmitScore_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/submitScore", []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid JSON body", decode(t, w)["error"])
}

func TestSubmitScore_MissingField(t *testing.T) {
	s, _ := newTestServer(t)

	b, _ := json.Marshal(map[string]any{"game": "EmojiTapper", "mode": "Classic", "platform": "ios", "score": 1})
	w := doRequest(s, http.MethodPost, "/submitScore", b)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Player name is required and must be a non-empty string", decode(t, w)["error"])
}

func TestGetTopScores(t *testing.T) {
	s, _ := newTestServer(t)
	for i, player := range []string{"alice", "bob", "carol"} {
		w := doRequest(s, http.MethodPost, "/submitScore", submitBody(player, (i+1)*10))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(3), body["count"])
	require.Equal(t, "all_time", body["period"])
	require.Equal(t, "EmojiTapper", body["game"])

	scores := body["scores"].([]any)
	require.Len(t, scores, 3)
	require.Equal(t, "carol", scores[0].(map[string]any)["player"])
	require.Equal(t, float64(30), scores[0].(map[string]any)["score"])
}

func TestGetTopScores_EmptyBoard(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	require.Equal(t, float64(0), body["count"])
	require.Equal(t, []any{}, body["scores"]) // [] rather than null
}

func TestGetTopScores_Limit(t *testing.T) {
	s, _ := newTestServer(t)
	for i := 0; i < 15; i++ {
		doRequest(s, http.MethodPost, "/submitScore", submitBody(fmt.Sprintf("p%d", i), i))
	}

	// default limit is 10
	w := doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery, nil)
	require.Equal(t, float64(10), decode(t, w)["count"])

	w = doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery+"&limit=3", nil)
	require.Equal(t, float64(3), decode(t, w)["count"])

	for _, bad := range []string{"0", "101", "-1", "abc"} {
		w = doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery+"&limit="+bad, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "Limit must be between 1 and 100", decode(t, w)["error"])
	}
}

func TestGetTopScores_Period(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	insert := func(player string, score int, at time.Time) {
		_, err := store.Insert(ctx, hsFor(player, score, at))
		require.NoError(t, err)
	}
	insert("today", 10, testNow.Add(-time.Hour))
	insert("lastweek", 20, testNow.AddDate(0, 0, -5))
	insert("ancient", 99, testNow.AddDate(-1, 0, 0))

	w := doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery+"&period=day", nil)
	body := decode(t, w)
	require.Equal(t, float64(1), body["count"])
	require.Equal(t, "day", body["period"])

	w = doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery+"&period=week", nil)
	require.Equal(t, float64(2), decode(t, w)["count"])

	w = doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery+"&period=all_time", nil)
	require.Equal(t, float64(3), decode(t, w)["count"])

	w = doRequest(s, http.MethodGet, "/getTopScores?"+boardQuery+"&period=year", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid period. Must be one of: day, week, month, all_time", decode(t, w)["error"])
}

func TestGetTopScores_MissingParams(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{
		"/getTopScores",
		"/getTopScores?game=EmojiTapper",
		"/getTopScores?game=EmojiTapper&mode=Classic",
	} {
		w := doRequest(s, http.MethodGet, target, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "Game, mode, and platform parameters are required", decode(t, w)["error"])
	}
}

func TestGetPlayerBest(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", 40))
	doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", 90))

	w := doRequest(s, http.MethodGet, "/getPlayerBest?"+boardQuery+"&player=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	require.Equal(t, true, body["success"])
	best := body["playerBest"].(map[string]any)
	require.Equal(t, "alice", best["player"])
	require.Equal(t, float64(90), best["score"])
}

func TestGetPlayerBest_NoRecords(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/getPlayerBest?"+boardQuery+"&player=nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Nil(t, body["playerBest"])
}

func TestGetPlayerBest_MissingPlayer(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/getPlayerBest?"+boardQuery, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Game, mode, platform, and player parameters are required", decode(t, w)["error"])
}

func TestGetLeaderboardStats(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", 40))
	doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", 90))
	doRequest(s, http.MethodPost, "/submitScore", submitBody("bob", 70))

	w := doRequest(s, http.MethodGet, "/getLeaderboardStats?"+boardQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	stats := body["stats"].(map[string]any)
	require.Equal(t, float64(3), stats["totalScores"])
	require.Equal(t, float64(2), stats["uniquePlayers"])
	require.Equal(t, float64(90), stats["highestScore"])
	require.Equal(t, float64(67), stats["averageScore"])
	require.Equal(t, "EmojiTapper", stats["game"])
}

func TestGetLeaderboardStats_Empty(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/getLeaderboardStats?"+boardQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := decode(t, w)["stats"].(map[string]any)
	for _, key := range []string{"totalScores", "uniquePlayers", "highestScore", "averageScore"} {
		require.Equal(t, float64(0), stats[key])
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodOptions, "/submitScore", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHeaderOnResponses(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/submitScore", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, false, decode(t, w)["success"])
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, false, decode(t, w)["success"])
}
