package remoteuser

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cedadev/remoteuser/pkg/audit"
	"github.com/cedadev/remoteuser/pkg/authenticator"
	"github.com/cedadev/remoteuser/pkg/identity"
)

const (
	// Name is the authenticator name used in the registry and configuration.
	Name = "remote-user"

	// AuthMethod tags identities established from trusted headers.
	AuthMethod = "REMOTE_USER"

	// DefaultRolesHeader carries one role per occurrence.
	DefaultRolesHeader = "x-remote-user-roles"
)

// DefaultUsernameHeaders are scanned in order; the first non-empty value wins.
var DefaultUsernameHeaders = []string{"remote-user", "x-remote-user"}

// Config holds remote-user authenticator configuration
type Config struct {
	// UsernameHeaders lists the trusted username headers in priority order.
	UsernameHeaders []string

	// RolesHeader is a repeatable header; each occurrence contributes a role.
	RolesHeader string
}

// DefaultConfig returns the standard header names.
func DefaultConfig() Config {
	headers := make([]string, len(DefaultUsernameHeaders))
	copy(headers, DefaultUsernameHeaders)
	return Config{
		UsernameHeaders: headers,
		RolesHeader:     DefaultRolesHeader,
	}
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger used for debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Authenticator) {
		a.log = log
	}
}

// WithAuditor records a successful authentication for every registered identity.
func WithAuditor(auditor audit.Auditor) Option {
	return func(a *Authenticator) {
		if auditor != nil {
			a.auditor = auditor
		}
	}
}

// Authenticator trusts an upstream proxy to have authenticated the user and
// reads the username and roles from request headers.
type Authenticator struct {
	config    Config
	registrar authenticator.Registrar
	log       logrus.FieldLogger
	auditor   audit.Auditor
}

// New creates a remote-user authenticator. Identities are handed to registrar,
// which may be nil when no session tracking is wanted.
func New(config Config, registrar authenticator.Registrar, opts ...Option) *Authenticator {
	if len(config.UsernameHeaders) == 0 {
		config.UsernameHeaders = DefaultConfig().UsernameHeaders
	}
	if config.RolesHeader == "" {
		config.RolesHeader = DefaultRolesHeader
	}

	a := &Authenticator{
		config:    config,
		registrar: registrar,
		log:       logrus.StandardLogger(),
		auditor:   audit.Discard,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithField("authenticator", Name)
	return a
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate establishes a principal from the trusted headers.
func (a *Authenticator) Authenticate(w http.ResponseWriter, r *http.Request) (authenticator.Outcome, error) {
	if id, ok := identity.Get(r.Context()); ok {
		a.log.WithField("username", id.Name()).Debug("already authenticated")
		return authenticator.AlreadyAuthenticatedAs(id), nil
	}

	header, username := a.username(r.Header)
	if !IsValidUsername(username) {
		a.log.Debug("no trusted username header")
		return authenticator.NotAuthenticated(), nil
	}

	roles := Roles(r.Header, a.config.RolesHeader)
	a.log.WithFields(logrus.Fields{
		"header":   header,
		"username": username,
		"roles":    roles,
	}).Debug("remote user found")

	id := identity.New(username, roles).
		WithAuthMethod(AuthMethod).
		WithRemoteIP(identity.ClientIP(r))

	if a.registrar != nil {
		if err := a.registrar.Register(w, r, id); err != nil {
			return authenticator.NotAuthenticated(), fmt.Errorf("failed to register %q: %w", username, err)
		}
	}

	a.auditor.Log(audit.AuthenticateEvent{
		User:              id.Username,
		Roles:             id.Roles,
		ClientIP:          r.RemoteAddr,
		AuthenticatorName: Name,
		AuthMethod:        AuthMethod,
		Success:           true,
	})

	return authenticator.AuthenticatedAs(id), nil
}

func (a *Authenticator) username(h http.Header) (string, string) {
	for _, name := range a.config.UsernameHeaders {
		if value := h.Get(name); IsValidUsername(value) {
			return name, value
		}
	}
	return "", ""
}

// Username returns the first non-empty value among the given headers, in order.
func Username(h http.Header, names ...string) string {
	for _, name := range names {
		if value := h.Get(name); IsValidUsername(value) {
			return value
		}
	}
	return ""
}

// Roles returns every value of the roles header in the order received. The
// result is never nil and never aliases h.
func Roles(h http.Header, name string) []string {
	values := h.Values(name)
	roles := make([]string, len(values))
	copy(roles, values)
	return roles
}

// IsValidUsername reports whether username is usable. No trimming or format
// checks are applied.
func IsValidUsername(username string) bool {
	return username != ""
}
