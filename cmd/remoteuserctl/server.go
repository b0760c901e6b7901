package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cedadev/remoteuser/pkg/config"
	"github.com/cedadev/remoteuser/pkg/db"
	"github.com/cedadev/remoteuser/pkg/logging"
	"github.com/cedadev/remoteuser/pkg/server"
	"github.com/cedadev/remoteuser/pkg/server/endpoints"
	"github.com/cedadev/remoteuser/pkg/session"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the remote-user authentication server",
	Long: `Run the remote-user authentication server.

The server must only be reachable through a reverse proxy that sets, or
strips, the remote-user, x-remote-user and x-remote-user-roles headers.

REMOTEUSER_SESSION_KEY holds the base64 session signing key (see
"remoteuserctl session-key generate"). Without it an ephemeral key is used
and sessions do not survive a restart.

DATABASE_URL is optional. When set, audit records are persisted and database
migrations are run on startup. Use --no-migrate to skip.

The configuration is reloaded when the config file changes or on SIGHUP.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(host, port string, noMigrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	key, err := sessionKey(log)
	if err != nil {
		return err
	}

	database, err := connectDatabase(log, noMigrate, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}

	s, err := server.NewServer(cfg, server.Options{
		Host:       host,
		Port:       port,
		SessionKey: key,
		DB:         database,
		Log:        log,
		Version:    Version,
	})
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := func(reason string) {
		entry := log.WithField("reason", reason)
		newCfg, err := config.Reload()
		if err != nil {
			entry.WithError(err).Error("configuration reload failed; keeping current configuration")
			return
		}
		if err := s.Reload(newCfg); err != nil {
			entry.WithError(err).Error("configuration reload failed; keeping current configuration")
		}
	}

	go func() {
		if err := watchConfig(ctx, cfg.ConfigFilePath(), log, func() { reload("config file changed") }); err != nil {
			log.WithError(err).Warn("not watching config file")
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				reload("SIGHUP")
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Running server at http://%s:%s...", host, port)
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// sessionKey decodes REMOTEUSER_SESSION_KEY, or generates an ephemeral key
// when it is not set.
func sessionKey(log logrus.FieldLogger) ([]byte, error) {
	keyB64, ok := os.LookupEnv("REMOTEUSER_SESSION_KEY")
	if !ok || keyB64 == "" {
		log.Warn("REMOTEUSER_SESSION_KEY is not set; using an ephemeral session key")
		return session.GenerateKey()
	}

	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("bad REMOTEUSER_SESSION_KEY: %w", err)
	}
	if len(key) < session.MinKeyLength {
		return nil, fmt.Errorf("bad REMOTEUSER_SESSION_KEY: %w", session.ErrKeyTooShort)
	}
	return key, nil
}

// connectDatabase returns nil when DATABASE_URL is not set.
func connectDatabase(log logrus.FieldLogger, noMigrate, debug bool) (*gorm.DB, error) {
	dbURL := db.URL()
	if dbURL == "" {
		log.Warn("DATABASE_URL is not set; audit records are not persisted")
		return nil, nil
	}

	if !noMigrate {
		log.Info("Running database migrations...")
		version, err := db.Migrate(dbURL)
		if err != nil {
			return nil, err
		}
		log.WithField("version", version).Info("database schema is up to date")
	}

	return db.Connect(db.Config{URL: dbURL, Debug: debug, Log: log})
}
