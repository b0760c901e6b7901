package authenticator

import (
	"fmt"
	"net/http"

	"github.com/cedadev/remoteuser/pkg/identity"
)

// Chain runs a fixed sequence of authenticators against a request.
type Chain struct {
	authenticators []Authenticator
}

// NewChain creates a chain that runs auths in order.
func NewChain(auths ...Authenticator) *Chain {
	return &Chain{authenticators: auths}
}

// Names returns the names of the chain's stages in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.authenticators))
	for i, a := range c.authenticators {
		names[i] = a.Name()
	}
	return names
}

// Authenticate runs every stage in order. A principal established by a stage
// is stored in the request context, so later stages see it as already
// authenticated. The returned request carries the principal, if any.
//
// The returned outcome is the one that established the principal, or
// AlreadyAuthenticated when the request carried one before the chain ran.
// An error from any stage stops the chain.
func (c *Chain) Authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, Outcome, error) {
	result := NotAuthenticated()
	if id, ok := identity.Get(r.Context()); ok {
		result = AlreadyAuthenticatedAs(id)
	}

	for _, a := range c.authenticators {
		outcome, err := a.Authenticate(w, r)
		if err != nil {
			return r, NotAuthenticated(), fmt.Errorf("%s: %w", a.Name(), err)
		}
		outcome.Authenticator = a.Name()

		switch outcome.Result {
		case Authenticated:
			if outcome.Identity == nil {
				return r, NotAuthenticated(), fmt.Errorf("%s: authenticated without an identity", a.Name())
			}
			r = r.WithContext(identity.Set(r.Context(), outcome.Identity))
			result = outcome
		case AlreadyAuthenticated:
			if result.Result == Unauthenticated {
				result = outcome
			}
		}
	}

	return r, result, nil
}
