package db

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DefaultMaxOpenConns bounds concurrent audit writes.
	DefaultMaxOpenConns = 10

	slowQueryThreshold = 200 * time.Millisecond
)

// ErrNoURL is returned by Connect when neither Config.URL nor DATABASE_URL is set.
var ErrNoURL = errors.New("DATABASE_URL environment variable is required")

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Debug logs every SQL statement instead of only slow ones and errors
	Debug bool
	// Log receives GORM's output. Defaults to the logrus standard logger.
	Log logrus.FieldLogger
	// MaxOpenConns defaults to DefaultMaxOpenConns
	MaxOpenConns int
}

// Connect opens the audit database.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, ErrNoURL
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger: newLogger(cfg.Log, cfg.Debug),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)

	return db, nil
}

// newLogger routes GORM's log output through logrus.
func newLogger(log logrus.FieldLogger, debug bool) logger.Interface {
	if log == nil {
		log = logrus.StandardLogger()
	}
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(log.WithField("component", "db"), logger.Config{
		SlowThreshold: slowQueryThreshold,
		LogLevel:      level,
	})
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
