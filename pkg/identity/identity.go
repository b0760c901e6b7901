package identity

import (
	"context"
	"net"
	"net/http"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated principal for a request.
type Identity struct {
	// Username is never empty for an identity produced by an authenticator.
	Username string
	// Roles keeps the order in which they were asserted, duplicates included.
	Roles []string

	// AuthMethod records which mechanism produced the identity (e.g. "REMOTE_USER").
	AuthMethod string
	RemoteIP   net.IP
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// New creates an Identity for username with a copy of roles.
// A nil roles slice yields an empty, non-nil role list.
func New(username string, roles []string) *Identity {
	r := make([]string, len(roles))
	copy(r, roles)
	return &Identity{
		Username: username,
		Roles:    r,
	}
}

// Name returns the principal name.
func (i *Identity) Name() string {
	return i.Username
}

// WithAuthMethod sets the authentication method tag.
func (i *Identity) WithAuthMethod(method string) *Identity {
	i.AuthMethod = method
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// WithLifetime sets the issue and expiry times.
func (i *Identity) WithLifetime(issuedAt, expiresAt time.Time) *Identity {
	i.IssuedAt = issuedAt
	i.ExpiresAt = expiresAt
	return i
}

// HasRole reports whether role is one of the identity's roles.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok && id != nil
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// ClientIP returns the IP address of the request's remote peer, or nil when
// RemoteAddr cannot be parsed.
func ClientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// No port, use as-is
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
