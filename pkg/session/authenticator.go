package session

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cedadev/remoteuser/pkg/authenticator"
	"github.com/cedadev/remoteuser/pkg/identity"
)

// Name is the session authenticator name.
const Name = "session"

// Authenticator restores the principal from a session cookie.
type Authenticator struct {
	manager *Manager
	log     logrus.FieldLogger
}

// NewAuthenticator creates a session authenticator.
func NewAuthenticator(manager *Manager, log logrus.FieldLogger) *Authenticator {
	return &Authenticator{
		manager: manager,
		log:     log.WithField("authenticator", Name),
	}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate never fails: a missing or invalid cookie leaves the request
// unauthenticated.
func (a *Authenticator) Authenticate(w http.ResponseWriter, r *http.Request) (authenticator.Outcome, error) {
	if id, ok := identity.Get(r.Context()); ok {
		return authenticator.AlreadyAuthenticatedAs(id), nil
	}

	id, err := a.manager.FromRequest(r)
	if err != nil {
		a.log.WithError(err).Debug("no valid session")
		return authenticator.NotAuthenticated(), nil
	}

	id.WithRemoteIP(identity.ClientIP(r))
	a.log.WithField("username", id.Name()).Debug("session restored")
	return authenticator.AuthenticatedAs(id), nil
}
