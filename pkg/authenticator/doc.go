// Package authenticator defines the interface for request authenticators and
// the pipeline that runs them.
//
// # Authenticator Interface
//
// All authenticators implement the Authenticator interface:
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(w http.ResponseWriter, r *http.Request) (Outcome, error)
//	}
//
// An Outcome is one of Unauthenticated, AlreadyAuthenticated or
// Authenticated. Authenticators that establish a principal hand it to a
// Registrar, the host's session mechanism.
//
// # Built-in Authenticators
//
//   - remote-user: trusts headers set by an authenticating reverse proxy - see [github.com/cedadev/remoteuser/pkg/authenticator/remoteuser]
//   - session: restores a principal from the session cookie - see [github.com/cedadev/remoteuser/pkg/session]
//
// # Chains
//
// A Registry holds the installed authenticators and which of them are
// enabled. Registry.Chain builds an ordered Chain; the server installs it as
// middleware in front of protected endpoints. The order is configured with
// the REMOTEUSER_AUTHENTICATORS environment variable:
//
//	REMOTEUSER_AUTHENTICATORS=session,remote-user
package authenticator
