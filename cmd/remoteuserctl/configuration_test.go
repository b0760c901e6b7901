package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "remoteuser.yml"), []byte("roles_header: x-groups\n"), 0o600))
	t.Setenv("REMOTEUSER_CONFIG_PATH", dir)

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, showConfiguration(&out, "text"))
		assert.Contains(t, out.String(), "x-groups")
		assert.Contains(t, out.String(), "file")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, showConfiguration(&out, "json"))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, filepath.Join(dir, "remoteuser.yml"), decoded["config_file"])
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, showConfiguration(&bytes.Buffer{}, "xml"))
	})
}

func TestApplyConfiguration_TestMode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		t.Setenv("REMOTEUSER_CONFIG_PATH", t.TempDir())

		var out bytes.Buffer
		require.NoError(t, applyConfiguration(&out, true))
		assert.Contains(t, out.String(), "Configuration is valid.")
	})

	t.Run("invalid", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "remoteuser.yml"), []byte("authenticators: [authn-ldap]\n"), 0o600))
		t.Setenv("REMOTEUSER_CONFIG_PATH", dir)

		err := applyConfiguration(&bytes.Buffer{}, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}
