package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cedadev/remoteuser/pkg/identity"
)

const (
	// DefaultCookieName is the name of the session cookie.
	DefaultCookieName = "remoteuser_session"

	// DefaultTTL is the lifetime of a session.
	DefaultTTL = 30 * time.Minute

	// MinKeyLength is the minimum HMAC key length in bytes.
	MinKeyLength = 32
)

var (
	// ErrNoSession is returned when a request carries no usable session.
	ErrNoSession = errors.New("no session")

	// ErrKeyTooShort is returned by NewManager for keys under MinKeyLength.
	ErrKeyTooShort = fmt.Errorf("session key must be at least %d bytes", MinKeyLength)
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Path       string
}

// Claims are the JWT claims of a session token.
type Claims struct {
	Roles      []string `json:"roles"`
	AuthMethod string   `json:"auth_method,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session cookies. It is the Registrar for
// identities established by other authenticators.
type Manager struct {
	key     []byte
	options Options
	now     func() time.Time
}

// NewManager creates a session manager signing with key.
func NewManager(key []byte, options Options) (*Manager, error) {
	if len(key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	if options.CookieName == "" {
		options.CookieName = DefaultCookieName
	}
	if options.TTL <= 0 {
		options.TTL = DefaultTTL
	}
	if options.Path == "" {
		options.Path = "/"
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &Manager{
		key:     k,
		options: options,
		now:     time.Now,
	}, nil
}

// GenerateKey returns a random key suitable for NewManager.
func GenerateKey() ([]byte, error) {
	key := make([]byte, MinKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	return key, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.options.CookieName
}

// Register issues a session for id and sets it on the response.
func (m *Manager) Register(w http.ResponseWriter, r *http.Request, id *identity.Identity) error {
	token, expiresAt, err := m.Issue(id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.options.CookieName,
		Value:    token,
		Path:     m.options.Path,
		Expires:  expiresAt,
		MaxAge:   int(m.options.TTL / time.Second),
		Secure:   m.options.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Issue signs a session token for id. The identity's lifetime is set to the
// token's.
func (m *Manager) Issue(id *identity.Identity) (string, time.Time, error) {
	if id == nil || id.Username == "" {
		return "", time.Time{}, errors.New("cannot issue a session without a username")
	}

	issuedAt := m.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.options.TTL)

	claims := Claims{
		Roles:      id.Roles,
		AuthMethod: id.AuthMethod,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}

	id.WithLifetime(issuedAt, expiresAt)
	return token, expiresAt, nil
}

// Parse verifies a session token and returns its identity.
func (m *Manager) Parse(tokenString string) (*identity.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid session: missing subject")
	}

	id := identity.New(claims.Subject, claims.Roles).WithAuthMethod(claims.AuthMethod)
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	id.ExpiresAt = claims.ExpiresAt.Time
	return id, nil
}

// FromRequest returns the identity of the request's session cookie.
func (m *Manager) FromRequest(r *http.Request) (*identity.Identity, error) {
	cookie, err := r.Cookie(m.options.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return m.Parse(cookie.Value)
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.options.CookieName,
		Value:    "",
		Path:     m.options.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.options.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
