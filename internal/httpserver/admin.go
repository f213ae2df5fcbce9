// internal/httpserver/admin.go
//
// Operator surface. Login exchanges the admin password (bcrypt hash in
// ADMIN_PASSWORD_HASH) for a short-lived HS256 token; the gated routes are
// read-only inspection helpers. The highscores collection stays
// append-only, there is no admin mutation.

package httpserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminTokenTTL = 12 * time.Hour

func (s *Server) mountAdminRoutes() {
	s.r.Post("/admin/login", s.handleAdminLogin)
	s.r.With(requireAdmin).Get("/admin/recent", s.handleAdminRecent)
}

type adminLoginReq struct {
	Password string `json:"password"`
}

// handleAdminLogin verifies the operator password and issues a bearer
// token. Disabled (403) when no password hash is configured.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if hash == "" {
		writeError(w, http.StatusForbidden, "Admin access is not configured")
		return
	}

	var body adminLoginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	exp := time.Now().Add(adminTokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  exp.Unix(),
		"iat":  time.Now().Unix(),
	})
	ss, err := token.SignedString(jwtSecret())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, map[string]any{"success": true, "token": ss, "expiresAt": exp.UTC()})
}

// handleAdminRecent lists the newest submissions for one board.
func (s *Server) handleAdminRecent(w http.ResponseWriter, r *http.Request) {
	f, ok := boardFilter(w, r)
	if !ok {
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "Limit must be between 1 and 100")
			return
		}
		limit = n
	}

	recent, err := s.store.Recent(r.Context(), f, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, map[string]any{"success": true, "scores": recent, "count": len(recent)})
}

// requireAdmin enforces a valid admin bearer token.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

func jwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev_secret_change_me")
}
