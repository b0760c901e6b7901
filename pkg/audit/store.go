package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"time"
)

// Store handles audit message persistence to database
type Store struct {
	db       *sql.DB
	hostname string
	pid      int
	now      func() time.Time
}

// NewStore creates a store on an existing database connection. The
// audit_messages table is created by the migrations in pkg/db.
func NewStore(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{
		db:       db,
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// Save persists an audit event to the database
func (s *Store) Save(ctx context.Context, event Event) error {
	if s.db == nil {
		return nil
	}

	sdataJSON, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		s.now().UTC(),
		s.hostname,
		AppName,
		s.pid,
		event.MessageID(),
		sdataJSON,
		event.Message(),
	)

	return err
}

// Count returns the number of persisted messages with the given message ID.
func (s *Store) Count(ctx context.Context, msgid string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM audit_messages WHERE msgid = $1`, msgid).Scan(&n)
	return n, err
}
