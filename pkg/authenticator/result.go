package authenticator

import "github.com/cedadev/remoteuser/pkg/identity"

//go:generate go run github.com/dmarkham/enumer -type=Result -transform=snake

// Result is the kind of outcome an authenticator reached for a request.
type Result int

const (
	// Unauthenticated means no principal could be established. The caller
	// decides whether to challenge, reject or fall through.
	Unauthenticated Result = iota
	// AlreadyAuthenticated means the request carried a principal before the
	// authenticator ran; nothing was changed.
	AlreadyAuthenticated
	// Authenticated means the authenticator established a new principal.
	Authenticated
)

// Outcome is the result of authenticating a single request.
type Outcome struct {
	Result   Result
	Identity *identity.Identity

	// Authenticator is the name of the chain stage that produced the outcome.
	// Set by Chain; empty when an authenticator is called directly.
	Authenticator string
}

// NotAuthenticated returns the Unauthenticated outcome.
func NotAuthenticated() Outcome {
	return Outcome{Result: Unauthenticated}
}

// AlreadyAuthenticatedAs returns the outcome for a request that already had id.
func AlreadyAuthenticatedAs(id *identity.Identity) Outcome {
	return Outcome{Result: AlreadyAuthenticated, Identity: id}
}

// AuthenticatedAs returns the outcome for a newly established id.
func AuthenticatedAs(id *identity.Identity) Outcome {
	return Outcome{Result: Authenticated, Identity: id}
}

// Authenticated reports whether the request has a principal, either newly
// established or pre-existing.
func (o Outcome) Authenticated() bool {
	return o.Result == Authenticated || o.Result == AlreadyAuthenticated
}
