package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cedadev/remoteuser/pkg/server/store"
)

// AuditTable is the table the audit store writes to.
const AuditTable = "audit_messages"

// HealthStore checks the audit database through GORM
type HealthStore struct {
	db *gorm.DB
}

// NewHealthStore creates a new HealthStore
func NewHealthStore(db *gorm.DB) *HealthStore {
	return &HealthStore{db: db}
}

// CheckConnectivity runs a trivial query
func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}

// CheckSchema looks the audit table up in the current schema.
func (s *HealthStore) CheckSchema(ctx context.Context) error {
	var count int64
	err := s.db.WithContext(ctx).
		Raw("SELECT count(*) FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name = ?", AuditTable).
		Row().
		Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", AuditTable, err)
	}
	if count == 0 {
		return store.ErrSchemaNotMigrated
	}
	return nil
}
