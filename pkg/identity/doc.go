// Package identity provides the authenticated principal for a request.
//
// An Identity is what an authenticator hands to the rest of the pipeline once
// it has decided who is making a request: a username, the ordered list of
// roles asserted for that user, and the authentication method that produced
// it.
//
// # Basic Usage
//
//	// Build an identity
//	id := identity.New("alice", []string{"admin", "editor"}).
//	    WithAuthMethod("REMOTE_USER").
//	    WithRemoteIP(identity.ClientIP(r))
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
// The request context is the principal registry of the pipeline: a principal
// present in the context means an earlier stage has already authenticated the
// request.
package identity
