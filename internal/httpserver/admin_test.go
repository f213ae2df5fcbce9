package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminLogin(t *testing.T, s *Server, password string) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"password": password})
	return doRequest(s, http.MethodPost, "/admin/login", b)
}

func configureAdmin(t *testing.T, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("ADMIN_PASSWORD_HASH", string(hash))
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestAdminLogin_NotConfigured(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	s, _ := newTestServer(t)

	w := adminLogin(t, s, "whatever")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Admin access is not configured", decode(t, w)["error"])
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	configureAdmin(t, "hunter2")
	s, _ := newTestServer(t)

	w := adminLogin(t, s, "hunter3")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid password", decode(t, w)["error"])
}

func TestAdminLoginAndRecent(t *testing.T) {
	configureAdmin(t, "hunter2")
	s, _ := newTestServer(t)

	w := adminLogin(t, s, "hunter2")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	doRequest(s, http.MethodPost, "/submitScore", submitBody("alice", 10))
	doRequest(s, http.MethodPost, "/submitScore", submitBody("bob", 20))

	r := httptest.NewRequest(http.MethodGet, "/admin/recent?"+boardQuery, nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, float64(2), out["count"])
}

func TestAdminRecent_RequiresToken(t *testing.T) {
	configureAdmin(t, "hunter2")
	s, _ := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/admin/recent?"+boardQuery, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/admin/recent?"+boardQuery, nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, r)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token", decode(t, rec)["error"])
}
