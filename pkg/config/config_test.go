package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	t.Setenv("REMOTEUSER_CONFIG_PATH", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REMOTEUSER_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"remote-user", "x-remote-user"}, cfg.UsernameHeaders)
	assert.Equal(t, "x-remote-user-roles", cfg.RolesHeader)
	assert.Equal(t, []string{"session", "remote-user"}, cfg.Authenticators)
	assert.True(t, cfg.RequireAuthentication)
	assert.Equal(t, 1800, cfg.SessionTTL)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, "default", cfg.Source("roles_header"))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
username_headers:
  - x-forwarded-user
roles_header: x-forwarded-groups
authenticators: [remote-user]
require_authentication: false
session_ttl: 60
audit_enabled: false
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, []string{"x-forwarded-user"}, cfg.UsernameHeaders)
	assert.Equal(t, "x-forwarded-groups", cfg.RolesHeader)
	assert.Equal(t, []string{"remote-user"}, cfg.Authenticators)
	assert.False(t, cfg.RequireAuthentication)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, 60, cfg.SessionTTL)
	assert.Equal(t, "file", cfg.Source("require_authentication"))
	assert.Equal(t, "default", cfg.Source("log_level"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	writeConfig(t, "roles_header: x-file-roles\nsession_ttl: 60\n")
	t.Setenv("REMOTEUSER_ROLES_HEADER", "x-env-roles")
	t.Setenv("REMOTEUSER_AUTHENTICATORS", " remote-user , ")
	t.Setenv("REMOTEUSER_SESSION_SECURE_COOKIE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "x-env-roles", cfg.RolesHeader)
	assert.Equal(t, "environment", cfg.Source("roles_header"))
	assert.Equal(t, []string{"remote-user"}, cfg.Authenticators)
	assert.True(t, cfg.SessionSecureCookie)
	assert.Equal(t, 60, cfg.SessionTTL)
	assert.Equal(t, "file", cfg.Source("session_ttl"))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed file", func(t *testing.T) {
		writeConfig(t, "username_headers: [unterminated\n")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("bad ttl in environment", func(t *testing.T) {
		t.Setenv("REMOTEUSER_CONFIG_PATH", t.TempDir())
		t.Setenv("REMOTEUSER_SESSION_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no username headers", func(c *Config) { c.UsernameHeaders = nil }, "username_headers"},
		{"blank username header", func(c *Config) { c.UsernameHeaders = []string{" "} }, "username_headers"},
		{"blank roles header", func(c *Config) { c.RolesHeader = "" }, "roles_header"},
		{"unknown authenticator", func(c *Config) { c.Authenticators = []string{"authn-ldap"} }, "invalid authenticator"},
		{"duplicate authenticator", func(c *Config) { c.Authenticators = []string{"session", "session"} }, "duplicate authenticator"},
		{"empty chain", func(c *Config) { c.Authenticators = nil }, ""},
		{"no cookie name", func(c *Config) { c.SessionCookieName = "" }, "session_cookie_name"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "session_ttl"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReload(t *testing.T) {
	writeConfig(t, "log_level: debug\n")

	cfg, err := Reload()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Same(t, cfg, Get())

	writeConfig(t, "log_level: loud\n")
	_, err = Reload()
	assert.Error(t, err)
	assert.Same(t, cfg, Get())
}

func TestFormat(t *testing.T) {
	cfg := Default()
	cfg.RolesHeader = ""

	text := cfg.FormatText()
	assert.Contains(t, text, "username_headers")
	assert.Contains(t, text, "remote-user,x-remote-user")
	assert.Contains(t, text, "(not set)")
	assert.Equal(t, len(attributeNames())+4, strings.Count(text, "\n"))

	out, err := cfg.FormatJSON()
	require.NoError(t, err)

	var decoded struct {
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Attributes, len(attributeNames()))
	assert.Equal(t, "default", decoded.Attributes[0].Source)
}

func TestSessionLifetime(t *testing.T) {
	cfg := Default()
	cfg.SessionTTL = 90
	assert.Equal(t, "1m30s", cfg.SessionLifetime().String())
}

func TestIsAuthenticatorEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsAuthenticatorEnabled("remote-user"))
	assert.False(t, cfg.IsAuthenticatorEnabled("authn"))
}
