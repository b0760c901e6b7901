package gorm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cedadev/remoteuser/pkg/server/store"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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

	return gormDB, mock
}

func TestHealthStore_CheckConnectivity(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewHealthStore(db).CheckConnectivity(context.Background())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("connection refused"))

		err := NewHealthStore(db).CheckConnectivity(context.Background())
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHealthStore_CheckSchema(t *testing.T) {
	t.Run("migrated", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectQuery(`information_schema.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := NewHealthStore(db).CheckSchema(context.Background())
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not migrated", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectQuery(`information_schema.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := NewHealthStore(db).CheckSchema(context.Background())
		assert.ErrorIs(t, err, store.ErrSchemaNotMigrated)
	})

	t.Run("query fails", func(t *testing.T) {
		db, mock := setupTestDB(t)
		mock.ExpectQuery(`information_schema.tables`).WillReturnError(errors.New("connection reset"))

		err := NewHealthStore(db).CheckSchema(context.Background())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrSchemaNotMigrated)
	})
}
