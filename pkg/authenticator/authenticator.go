package authenticator

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/cedadev/remoteuser/pkg/identity"
)

// ErrNotFound is returned when a named authenticator is not registered.
var ErrNotFound = errors.New("authenticator not found")

// Authenticator defines the interface for all authenticators
type Authenticator interface {
	// Name returns the authenticator name (e.g., "remote-user", "session")
	Name() string

	// Authenticate inspects the request and reports whether it carries, or
	// now has, an authenticated principal. The request is never modified.
	Authenticate(w http.ResponseWriter, r *http.Request) (Outcome, error)
}

// Registrar hands a newly established principal to the host's session
// mechanism, which may in turn set up session tracking on the response.
type Registrar interface {
	Register(w http.ResponseWriter, r *http.Request, id *identity.Identity) error
}

// RegistrarFunc adapts a function to the Registrar interface.
type RegistrarFunc func(w http.ResponseWriter, r *http.Request, id *identity.Identity) error

// Register calls f.
func (f RegistrarFunc) Register(w http.ResponseWriter, r *http.Request, id *identity.Identity) error {
	return f(w, r, id)
}

// Registry holds all registered authenticators
type Registry struct {
	mu             sync.RWMutex
	authenticators map[string]Authenticator
	enabled        map[string]bool
}

// NewRegistry creates a new authenticator registry
func NewRegistry() *Registry {
	return &Registry{
		authenticators: make(map[string]Authenticator),
		enabled:        make(map[string]bool),
	}
}

// Register adds an authenticator to the registry
func (r *Registry) Register(auth Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticators[auth.Name()] = auth
}

// Enable enables an authenticator by name
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authenticators[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r.enabled[name] = true
	return nil
}

// Disable disables an authenticator by name
func (r *Registry) Disable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.enabled, name)
}

// Get returns an authenticator by name
func (r *Registry) Get(name string) (Authenticator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auth, ok := r.authenticators[name]
	return auth, ok
}

// IsEnabled checks if an authenticator is enabled
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[name]
}

// Installed returns all installed authenticator names, sorted
func (r *Registry) Installed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.authenticators))
	for name := range r.authenticators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enabled returns all enabled authenticator names, sorted
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.enabled))
	for name := range r.enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Chain builds a chain from the named authenticators, in the given order.
// Every name must be registered and enabled.
func (r *Registry) Chain(names ...string) (*Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auths := make([]Authenticator, 0, len(names))
	for _, name := range names {
		auth, ok := r.authenticators[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if !r.enabled[name] {
			return nil, fmt.Errorf("authenticator %q is not enabled", name)
		}
		auths = append(auths, auth)
	}
	return NewChain(auths...), nil
}

// Replace swaps in the authenticators and enabled set of other.
func (r *Registry) Replace(other *Registry) {
	other.mu.RLock()
	authenticators := make(map[string]Authenticator, len(other.authenticators))
	for name, auth := range other.authenticators {
		authenticators[name] = auth
	}
	enabled := make(map[string]bool, len(other.enabled))
	for name := range other.enabled {
		enabled[name] = true
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticators = authenticators
	r.enabled = enabled
}
