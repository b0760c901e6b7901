package endpoints

import (
	"bytes"
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cedadev/remoteuser/pkg/config"
	"github.com/cedadev/remoteuser/pkg/server"
)

func testSessionKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

// newTestServer creates a server without a database, with all endpoints
// registered. Audit records are written to the returned buffer.
func newTestServer(t *testing.T, cfg *config.Config) (*server.Server, *bytes.Buffer) {
	if cfg == nil {
		cfg = config.Default()
	}
	log, _ := test.NewNullLogger()
	var auditBuf bytes.Buffer

	s, err := server.NewServer(cfg, server.Options{
		Host:        "127.0.0.1",
		Port:        "0",
		SessionKey:  testSessionKey(),
		AuditWriter: &auditBuf,
		Log:         log,
		Version:     "1.2.3",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	RegisterAll(s)
	return s, &auditBuf
}

// newMockTestServer creates a server backed by a mocked database
func newMockTestServer(t *testing.T) (*server.Server, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	s, err := server.NewServer(config.Default(), server.Options{
		SessionKey:  testSessionKey(),
		DB:          gormDB,
		AuditWriter: &bytes.Buffer{},
		Log:         log,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	RegisterAll(s)
	return s, mock
}
