package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedadev/remoteuser/pkg/authenticator"
	"github.com/cedadev/remoteuser/pkg/identity"
)

func TestAuthenticator(t *testing.T) {
	m := newTestManager(t, Options{})
	log, _ := test.NewNullLogger()
	auth := NewAuthenticator(m, log)

	assert.Equal(t, "session", auth.Name())

	token, _, err := m.Issue(identity.New("alice", []string{"admin"}).WithAuthMethod("REMOTE_USER"))
	require.NoError(t, err)

	t.Run("restores identity from cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

		outcome, err := auth.Authenticate(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, authenticator.Authenticated, outcome.Result)
		assert.Equal(t, "alice", outcome.Identity.Username)
		assert.Equal(t, []string{"admin"}, outcome.Identity.Roles)
		assert.Equal(t, "REMOTE_USER", outcome.Identity.AuthMethod)
		assert.Equal(t, "10.0.0.9", outcome.Identity.RemoteIP.String())
	})

	t.Run("invalid cookie is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "garbage"})

		outcome, err := auth.Authenticate(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, authenticator.Unauthenticated, outcome.Result)
	})

	t.Run("no cookie", func(t *testing.T) {
		outcome, err := auth.Authenticate(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, authenticator.Unauthenticated, outcome.Result)
	})

	t.Run("existing principal", func(t *testing.T) {
		existing := identity.New("bob", nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(identity.Set(req.Context(), existing))

		outcome, err := auth.Authenticate(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.Equal(t, authenticator.AlreadyAuthenticated, outcome.Result)
		assert.Same(t, existing, outcome.Identity)
	})
}
