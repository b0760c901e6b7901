package store

import (
	"context"
	"errors"
)

// ErrSchemaNotMigrated is returned by CheckSchema when the audit tables are missing.
var ErrSchemaNotMigrated = errors.New("database schema is not migrated")

// HealthStore reports on the database behind the audit store
type HealthStore interface {
	// CheckConnectivity verifies database connectivity
	CheckConnectivity(ctx context.Context) error

	// CheckSchema returns ErrSchemaNotMigrated until the migrations have run
	CheckSchema(ctx context.Context) error
}
