package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/remoteuser/config"
	ConfigFileName    = "remoteuser.yml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "REMOTEUSER_"
)

// ValidAuthenticators is the list of valid authenticator names
var ValidAuthenticators = []string{"session", "remote-user"}

// ValidLogFormats is the list of valid log formats
var ValidLogFormats = []string{"text", "json"}

// Config holds all remoteuser configuration settings
type Config struct {
	// UsernameHeaders are the trusted username headers, in priority order
	UsernameHeaders []string `yaml:"username_headers" json:"username_headers"`

	// RolesHeader is the repeatable header carrying one role per occurrence
	RolesHeader string `yaml:"roles_header" json:"roles_header"`

	// Authenticators is the ordered authenticator chain
	Authenticators []string `yaml:"authenticators" json:"authenticators"`

	// RequireAuthentication rejects unauthenticated requests with 401
	RequireAuthentication bool `yaml:"require_authentication" json:"require_authentication"`

	SessionCookieName string `yaml:"session_cookie_name" json:"session_cookie_name"`

	// SessionTTL is the session lifetime in seconds
	SessionTTL int `yaml:"session_ttl" json:"session_ttl"`

	SessionSecureCookie bool `yaml:"session_secure_cookie" json:"session_secure_cookie"`

	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors Config with pointers so that values explicitly set to
// false or zero in the file can be told apart from absent ones.
type fileConfig struct {
	UsernameHeaders       []string `yaml:"username_headers"`
	RolesHeader           *string  `yaml:"roles_header"`
	Authenticators        []string `yaml:"authenticators"`
	RequireAuthentication *bool    `yaml:"require_authentication"`
	SessionCookieName     *string  `yaml:"session_cookie_name"`
	SessionTTL            *int     `yaml:"session_ttl"`
	SessionSecureCookie   *bool    `yaml:"session_secure_cookie"`
	AuditEnabled          *bool    `yaml:"audit_enabled"`
	LogLevel              *string  `yaml:"log_level"`
	LogFormat             *string  `yaml:"log_format"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment. The current
// configuration is kept if the new one fails to load or validate.
func Reload() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return cfg, nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		UsernameHeaders:       []string{"remote-user", "x-remote-user"},
		RolesHeader:           "x-remote-user-roles",
		Authenticators:        []string{"session", "remote-user"},
		RequireAuthentication: true,
		SessionCookieName:     "remoteuser_session",
		SessionTTL:            1800,
		SessionSecureCookie:   false,
		AuditEnabled:          true,
		LogLevel:              "info",
		LogFormat:             "text",
		sources:               make(map[string]string),
	}
}

// Default returns the default configuration, ignoring file and environment.
func Default() *Config {
	c := newDefault()
	for _, name := range attributeNames() {
		c.sources[name] = "default"
	}
	return c
}

// Path returns the config file path selected by REMOTEUSER_CONFIG_PATH.
func Path() string {
	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return filepath.Join(configPath, ConfigFileName)
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*Config, error) {
	config := Default()
	config.configFilePath = Path()

	// A missing file is not an error
	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"username_headers", "roles_header", "authenticators",
		"require_authentication", "session_cookie_name", "session_ttl",
		"session_secure_cookie", "audit_enabled", "log_level", "log_format",
	}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	if len(file.UsernameHeaders) > 0 {
		c.UsernameHeaders = file.UsernameHeaders
		c.sources["username_headers"] = "file"
	}
	if file.RolesHeader != nil {
		c.RolesHeader = *file.RolesHeader
		c.sources["roles_header"] = "file"
	}
	if len(file.Authenticators) > 0 {
		c.Authenticators = file.Authenticators
		c.sources["authenticators"] = "file"
	}
	if file.RequireAuthentication != nil {
		c.RequireAuthentication = *file.RequireAuthentication
		c.sources["require_authentication"] = "file"
	}
	if file.SessionCookieName != nil {
		c.SessionCookieName = *file.SessionCookieName
		c.sources["session_cookie_name"] = "file"
	}
	if file.SessionTTL != nil {
		c.SessionTTL = *file.SessionTTL
		c.sources["session_ttl"] = "file"
	}
	if file.SessionSecureCookie != nil {
		c.SessionSecureCookie = *file.SessionSecureCookie
		c.sources["session_secure_cookie"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LogFormat != nil {
		c.LogFormat = *file.LogFormat
		c.sources["log_format"] = "file"
	}
}

func (c *Config) applyEnvConfig() error {
	if val := os.Getenv(EnvPrefix + "USERNAME_HEADERS"); val != "" {
		c.UsernameHeaders = splitAndTrim(val)
		c.sources["username_headers"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "ROLES_HEADER"); val != "" {
		c.RolesHeader = strings.TrimSpace(val)
		c.sources["roles_header"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "AUTHENTICATORS"); val != "" {
		c.Authenticators = splitAndTrim(val)
		c.sources["authenticators"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "REQUIRE_AUTHENTICATION"); val != "" {
		c.RequireAuthentication = parseBool(val)
		c.sources["require_authentication"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "SESSION_COOKIE_NAME"); val != "" {
		c.SessionCookieName = val
		c.sources["session_cookie_name"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "SESSION_TTL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %sSESSION_TTL %q: %w", EnvPrefix, val, err)
		}
		c.SessionTTL = i
		c.sources["session_ttl"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "SESSION_SECURE_COOKIE"); val != "" {
		c.SessionSecureCookie = parseBool(val)
		c.sources["session_secure_cookie"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = parseBool(val)
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv(EnvPrefix + "LOG_FORMAT"); val != "" {
		c.LogFormat = val
		c.sources["log_format"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SessionLifetime returns the session TTL as a duration
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// IsAuthenticatorEnabled checks if an authenticator is part of the chain
func (c *Config) IsAuthenticatorEnabled(authenticator string) bool {
	for _, a := range c.Authenticators {
		if a == authenticator {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.UsernameHeaders) == 0 {
		return fmt.Errorf("username_headers must not be empty")
	}
	for _, h := range c.UsernameHeaders {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("invalid username_headers value: %q", h)
		}
	}
	if strings.TrimSpace(c.RolesHeader) == "" {
		return fmt.Errorf("roles_header must not be empty")
	}

	validAuthenticators := make(map[string]bool)
	for _, a := range ValidAuthenticators {
		validAuthenticators[a] = true
	}
	seen := make(map[string]bool)
	for _, auth := range c.Authenticators {
		if !validAuthenticators[auth] {
			return fmt.Errorf("invalid authenticator: %s", auth)
		}
		if seen[auth] {
			return fmt.Errorf("duplicate authenticator: %s", auth)
		}
		seen[auth] = true
	}

	if c.SessionCookieName == "" {
		return fmt.Errorf("session_cookie_name must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %d", c.SessionTTL)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	validFormat := false
	for _, f := range ValidLogFormats {
		if c.LogFormat == f {
			validFormat = true
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "username_headers", Value: strings.Join(c.UsernameHeaders, ","), Source: c.Source("username_headers")},
		{Name: "roles_header", Value: c.RolesHeader, Source: c.Source("roles_header")},
		{Name: "authenticators", Value: strings.Join(c.Authenticators, ","), Source: c.Source("authenticators")},
		{Name: "require_authentication", Value: strconv.FormatBool(c.RequireAuthentication), Source: c.Source("require_authentication")},
		{Name: "session_cookie_name", Value: c.SessionCookieName, Source: c.Source("session_cookie_name")},
		{Name: "session_ttl", Value: strconv.Itoa(c.SessionTTL), Source: c.Source("session_ttl")},
		{Name: "session_secure_cookie", Value: strconv.FormatBool(c.SessionSecureCookie), Source: c.Source("session_secure_cookie")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-35s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-35s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-35s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseBool(val string) bool {
	return val == "true" || val == "1"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
