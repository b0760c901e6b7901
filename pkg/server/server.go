package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cedadev/remoteuser/pkg/audit"
	"github.com/cedadev/remoteuser/pkg/authenticator"
	"github.com/cedadev/remoteuser/pkg/authenticator/remoteuser"
	"github.com/cedadev/remoteuser/pkg/config"
	"github.com/cedadev/remoteuser/pkg/logging"
	"github.com/cedadev/remoteuser/pkg/server/middleware"
	"github.com/cedadev/remoteuser/pkg/server/store"
	gormstore "github.com/cedadev/remoteuser/pkg/server/store/gorm"
	"github.com/cedadev/remoteuser/pkg/session"
)

// Options holds the parts of the server that do not change on reload.
type Options struct {
	Host string
	Port string

	// SessionKey signs session cookies. It must be at least 32 bytes.
	SessionKey []byte

	// DB enables the audit store and the database health check. Optional.
	DB *gorm.DB

	// AuditWriter receives RFC5424 audit records. Defaults to os.Stdout.
	AuditWriter io.Writer

	Log     *logrus.Logger
	Version string
}

type Server struct {
	Router         *mux.Router
	Registry       *authenticator.Registry
	Authentication *middleware.Authentication
	HealthStore    store.HealthStore
	Auditor        audit.Auditor
	DB             *gorm.DB
	Log            *logrus.Logger
	Version        string

	trail      *audit.Trail
	sessionKey []byte
	sessions   atomic.Pointer[session.Manager]
	config     atomic.Pointer[config.Config]
	logWriter  *io.PipeWriter
	srv        *http.Server
}

// NewServer creates a server configured by cfg. Endpoints are registered
// separately (see the endpoints package).
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.AuditWriter == nil {
		opts.AuditWriter = os.Stdout
	}

	s := &Server{
		Router:     mux.NewRouter().UseEncodedPath(),
		Registry:   authenticator.NewRegistry(),
		DB:         opts.DB,
		Log:        opts.Log,
		Version:    opts.Version,
		sessionKey: opts.SessionKey,
	}

	var auditStore *audit.Store
	if opts.DB != nil {
		sqlDB, err := opts.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		auditStore = audit.NewStore(sqlDB)
		s.HealthStore = gormstore.NewHealthStore(opts.DB)
	}
	s.trail = audit.NewTrail(audit.NewLogger(opts.AuditWriter), auditStore, s.Log)
	s.Auditor = s.trail
	s.Authentication = middleware.NewAuthentication(nil, true, s.Auditor, s.Log)

	if err := s.Reload(cfg); err != nil {
		return nil, err
	}

	s.logWriter = s.Log.Writer()
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.Log),
		handlers.PrintRecoveryStack(true),
	)
	s.srv = &http.Server{
		Handler: recovery(handlers.CombinedLoggingHandler(s.logWriter, handlers.ProxyHeaders(s.Router))),
		Addr:    net.JoinHostPort(opts.Host, opts.Port),
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return s, nil
}

// Reload applies cfg: the authenticators are rebuilt and the middleware,
// logger and audit trail updated. On error the running configuration is kept.
func (s *Server) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sessions, err := session.NewManager(s.sessionKey, session.Options{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionLifetime(),
		Secure:     cfg.SessionSecureCookie,
	})
	if err != nil {
		return err
	}

	// Build into a fresh registry so a failure leaves the current one untouched
	registry := authenticator.NewRegistry()
	registry.Register(session.NewAuthenticator(sessions, s.Log))
	registry.Register(remoteuser.New(
		remoteuser.Config{
			UsernameHeaders: cfg.UsernameHeaders,
			RolesHeader:     cfg.RolesHeader,
		},
		sessions,
		remoteuser.WithLogger(s.Log),
		remoteuser.WithAuditor(s.Auditor),
	))
	for _, name := range cfg.Authenticators {
		if err := registry.Enable(name); err != nil {
			return err
		}
	}
	chain, err := registry.Chain(cfg.Authenticators...)
	if err != nil {
		return err
	}

	if err := logging.Configure(s.Log, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	s.Registry.Replace(registry)
	s.sessions.Store(sessions)
	s.trail.SetEnabled(cfg.AuditEnabled)
	s.Authentication.Update(chain, cfg.RequireAuthentication)
	s.config.Store(cfg)

	s.Log.WithFields(logrus.Fields{
		"authenticators":         chain.Names(),
		"require_authentication": cfg.RequireAuthentication,
	}).Info("configuration applied")
	return nil
}

// Config returns the configuration currently applied.
func (s *Server) Config() *config.Config {
	return s.config.Load()
}

// Sessions returns the current session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions.Load()
}

// Handler returns the full handler stack, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithListener serves on an existing listener until Shutdown.
func (s *Server) StartWithListener(l net.Listener) error {
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if s.logWriter != nil {
		_ = s.logWriter.Close()
	}
	return err
}
