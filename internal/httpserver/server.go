// internal/httpserver/server.go
//
// HTTP wiring for the leaderboard backend.
// Responsibilities:
//   - Router + middleware (JSON, open CORS, timeouts, panic recovery,
//     request IDs).
//   - Public endpoints: "/", "/health", POST /submitScore,
//     GET /getTopScores, GET /getPlayerBest, GET /getLeaderboardStats.
//   - Live feed: GET /ws/feed.
//   - Admin inspection endpoints (require token): mounted under /admin.
//
// Notes:
//   - CORS is wide open (Access-Control-Allow-Origin: *); game clients
//     submit from every platform with no credentials.
//   - Validation failures are 400s with the message from the leaderboard
//     package; storage failures are opaque 500s.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/emojitapper/backend/internal/leaderboard"
	"github.com/emojitapper/backend/internal/storage"
	"github.com/emojitapper/backend/internal/ws"
)

const defaultTopLimit = 10

// Server bundles router, score store, and the live feed hub.
type Server struct {
	r     *chi.Mux
	store storage.Store
	hub   *ws.Hub
	now   func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
// hub may be nil (tests); the feed endpoint then 404s.
func New(store storage.Store, hub *ws.Hub) *Server {
	s := &Server{r: chi.NewRouter(), store: store, hub: hub, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	// matches the game client's 30s request timeout
	s.r.Use(chimw.Timeout(30 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsOpen)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"emojitapper-leaderboard","endpoints":["/health","POST /submitScore","GET /getTopScores","GET /getPlayerBest","GET /getLeaderboardStats"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// --- public API ---
	s.r.Post("/submitScore", s.handleSubmitScore)
	s.r.Get("/getTopScores", s.handleGetTopScores)
	s.r.Get("/getPlayerBest", s.handleGetPlayerBest)
	s.r.Get("/getLeaderboardStats", s.handleGetStats)

	// --- live feed ---
	if hub != nil {
		s.r.Get("/ws/feed", s.handleFeed)
	}

	// --- admin ---
	s.mountAdminRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsOpen enables unauthenticated CORS for every origin and answers
// preflights with 204.
func corsOpen(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ public API ---------------------------------

// handleSubmitScore validates and appends one score document. Duplicates
// are expected and never rejected.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var sub leaderboard.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := sub.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hs := leaderboard.HighScore{
		Game:        sub.Game,
		Mode:        sub.Mode,
		Platform:    sub.Platform,
		Player:      sub.Player,
		Score:       sub.Score,
		SubmittedAt: s.now().UTC(),
	}
	id, err := s.store.Insert(r.Context(), hs)
	if err != nil {
		log.Error().Err(err).Str("player", sub.Player).Msg("insert highscore")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	hs.ID = id

	if s.hub != nil {
		s.hub.Publish(storage.Filter{Game: hs.Game, Mode: hs.Mode, Platform: hs.Platform}, hs)
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"success": true, "id": id})
}

// handleGetTopScores returns the board's highest scores within a period.
func (s *Server) handleGetTopScores(w http.ResponseWriter, r *http.Request) {
	f, ok := boardFilter(w, r)
	if !ok {
		return
	}

	period, err := leaderboard.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := defaultTopLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			writeError(w, http.StatusBadRequest, leaderboard.ErrInvalidLimit.Error())
			return
		}
	}

	scores, err := s.store.TopScores(r.Context(), f, period.Start(s.now()), limit)
	if err != nil {
		log.Error().Err(err).Msg("query top scores")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if scores == nil {
		scores = []leaderboard.HighScore{}
	}

	writeJSON(w, map[string]any{
		"success":  true,
		"scores":   scores,
		"count":    len(scores),
		"period":   period,
		"game":     f.Game,
		"mode":     f.Mode,
		"platform": f.Platform,
	})
}

// handleGetPlayerBest returns the player's single best record, or null.
func (s *Server) handleGetPlayerBest(w http.ResponseWriter, r *http.Request) {
	f, ok := boardFilter(w, r)
	if !ok {
		return
	}
	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, "Game, mode, platform, and player parameters are required")
		return
	}

	best, err := s.store.PlayerBest(r.Context(), f, player)
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("query player best")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, map[string]any{"success": true, "playerBest": best})
}

// statsPayload is the stats object with the board's identity echoed back.
type statsPayload struct {
	leaderboard.Stats
	Game     string `json:"game"`
	Mode     string `json:"mode"`
	Platform string `json:"platform"`
}

// handleGetStats aggregates the board's full score set.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	f, ok := boardFilter(w, r)
	if !ok {
		return
	}

	stats, err := s.store.Stats(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("query stats")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"stats":   statsPayload{Stats: stats, Game: f.Game, Mode: f.Mode, Platform: f.Platform},
	})
}

// handleFeed subscribes a websocket viewer to one board's submissions.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	f, ok := boardFilter(w, r)
	if !ok {
		return
	}
	if err := ws.Serve(s.hub, f, w, r); err != nil {
		log.Warn().Err(err).Msg("feed upgrade failed")
	}
}

// ------------------------------- helpers -----------------------------------

// boardFilter extracts the required game/mode/platform triple, writing a
// 400 and returning ok=false when any is missing.
func boardFilter(w http.ResponseWriter, r *http.Request) (storage.Filter, bool) {
	q := r.URL.Query()
	f := storage.Filter{
		Game:     q.Get("game"),
		Mode:     q.Get("mode"),
		Platform: q.Get("platform"),
	}
	if f.Game == "" || f.Mode == "" || f.Platform == "" {
		writeError(w, http.StatusBadRequest, "Game, mode, and platform parameters are required")
		return storage.Filter{}, false
	}
	return f, true
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
