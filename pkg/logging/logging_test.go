package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New("debug", "json", &buf)
		require.NoError(t, err)

		log.WithField("username", "alice").Debug("remote user found")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "alice", entry["username"])
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "remote user found", entry["msg"])
	})

	t.Run("text filters by level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New("warn", "text", &buf)
		require.NoError(t, err)

		log.Info("hidden")
		log.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := New("loud", "text", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := New("info", "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestConfigure_KeepsLoggerOnError(t *testing.T) {
	log, err := New("info", "text", &bytes.Buffer{})
	require.NoError(t, err)

	assert.Error(t, Configure(log, "debug", "xml"))
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	require.NoError(t, Configure(log, "debug", "json"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}
