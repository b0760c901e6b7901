package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedadev/remoteuser/pkg/config"
	"github.com/cedadev/remoteuser/pkg/session"
)

func TestWhoamiEndpoint(t *testing.T) {
	s, auditBuf := newTestServer(t, nil)

	t.Run("whoami with trusted headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.RemoteAddr = "10.0.0.2:5555"
		req.Header.Set("Remote-User", "alice")
		req.Header.Add("X-Remote-User-Roles", "admin")
		req.Header.Add("X-Remote-User-Roles", "editor")
		w := httptest.NewRecorder()

		s.Handler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result WhoamiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "alice", result.Username)
		assert.Equal(t, []string{"admin", "editor"}, result.Roles)
		assert.Equal(t, "REMOTE_USER", result.AuthMethod)
		assert.Equal(t, "10.0.0.2", result.ClientIP)
		assert.NotNil(t, result.ExpiresAt)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, session.DefaultCookieName, cookies[0].Name)

		assert.Contains(t, auditBuf.String(), " authn ")
		assert.Contains(t, auditBuf.String(), " identity-check ")
	})

	t.Run("whoami with forwarded client address", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("x-remote-user", "bob")
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		w := httptest.NewRecorder()

		s.Handler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var result WhoamiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "bob", result.Username)
		assert.Equal(t, "203.0.113.7", result.ClientIP)
		assert.Empty(t, result.Roles)
	})

	t.Run("whoami with session cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("remote-user", "alice")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		cookie := w.Result().Cookies()[0]

		// No headers this time; the session carries the principal
		req = httptest.NewRequest("GET", "/whoami", nil)
		req.AddCookie(cookie)
		w = httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var result WhoamiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "alice", result.Username)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("whoami without headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		w := httptest.NewRecorder()

		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.True(t, strings.Contains(auditBuf.String(), "failed to authenticate"))
	})

	t.Run("whoami with empty username header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("remote-user", "")
		w := httptest.NewRecorder()

		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestWhoamiEndpoint_AuthenticationOptional(t *testing.T) {
	cfg := config.Default()
	cfg.RequireAuthentication = false
	s, _ := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to determine identity")
}
