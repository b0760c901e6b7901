package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedadev/remoteuser/pkg/config"
)

func TestHandleStatus(t *testing.T) {
	t.Run("returns version", func(t *testing.T) {
		handler := handleStatus("1.2.3")

		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, w.Body.String())
	})

	t.Run("defaults version", func(t *testing.T) {
		w := httptest.NewRecorder()
		handleStatus("")(w, httptest.NewRequest("GET", "/", nil))
		assert.JSONEq(t, `{"status":"ok","version":"dev"}`, w.Body.String())
	})
}

func TestAuthenticatorsEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Authenticators = []string{"remote-user"}
	s, _ := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/authenticators", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthenticatorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"remote-user", "session"}, resp.Installed)
	assert.Equal(t, []string{"remote-user"}, resp.Enabled)
	assert.Equal(t, []string{"remote-user"}, resp.Chain)
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		s, _ := newTestServer(t, nil)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","database":"not configured"}`, w.Body.String())
	})

	t.Run("database reachable", func(t *testing.T) {
		s, mock := newMockTestServer(t)
		mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`information_schema.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","database":"ok"}`, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database unreachable", func(t *testing.T) {
		s, mock := newMockTestServer(t)
		mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("connection refused"))

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "unreachable", resp.Database)
	})

	t.Run("schema not migrated", func(t *testing.T) {
		s, mock := newMockTestServer(t)
		mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`information_schema.tables`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not migrated", resp.Database)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
