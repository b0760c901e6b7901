package middleware

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cedadev/remoteuser/pkg/audit"
	"github.com/cedadev/remoteuser/pkg/authenticator"
)

type authState struct {
	chain    *authenticator.Chain
	required bool
}

// Authentication is middleware that runs an authenticator chain in front of
// a handler. The chain can be replaced while requests are in flight.
type Authentication struct {
	state   atomic.Pointer[authState]
	auditor audit.Auditor
	log     logrus.FieldLogger
}

// NewAuthentication creates authentication middleware. When required is set,
// requests no authenticator could establish a principal for are rejected.
func NewAuthentication(chain *authenticator.Chain, required bool, auditor audit.Auditor, log logrus.FieldLogger) *Authentication {
	if auditor == nil {
		auditor = audit.Discard
	}
	a := &Authentication{
		auditor: auditor,
		log:     log.WithField("component", "authentication"),
	}
	a.Update(chain, required)
	return a
}

// Update swaps the chain and requirement.
func (a *Authentication) Update(chain *authenticator.Chain, required bool) {
	if chain == nil {
		chain = authenticator.NewChain()
	}
	a.state.Store(&authState{chain: chain, required: required})
}

// Chain returns the current chain.
func (a *Authentication) Chain() *authenticator.Chain {
	return a.state.Load().chain
}

// Required reports whether unauthenticated requests are rejected.
func (a *Authentication) Required() bool {
	return a.state.Load().required
}

// Middleware returns an HTTP middleware that authenticates requests
func (a *Authentication) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := a.state.Load()
		stages := strings.Join(state.chain.Names(), ",")

		r, outcome, err := state.chain.Authenticate(w, r)
		if err != nil {
			a.log.WithError(err).WithField("client_ip", r.RemoteAddr).Error("authentication failed")
			a.auditor.Log(audit.AuthenticateEvent{
				ClientIP:          r.RemoteAddr,
				AuthenticatorName: stages,
				Success:           false,
				ErrorMessage:      err.Error(),
			})
			http.Error(w, "Authentication failed", http.StatusInternalServerError)
			return
		}

		if !outcome.Authenticated() {
			if state.required {
				a.log.WithField("client_ip", r.RemoteAddr).Debug("authentication required")
				a.auditor.Log(audit.AuthenticateEvent{
					ClientIP:          r.RemoteAddr,
					AuthenticatorName: stages,
					Success:           false,
					ErrorMessage:      "no principal established",
				})
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
		} else {
			a.log.WithFields(logrus.Fields{
				"username":      outcome.Identity.Name(),
				"authenticator": outcome.Authenticator,
				"result":        outcome.Result.String(),
			}).Debug("request authenticated")
		}

		next.ServeHTTP(w, r)
	})
}
