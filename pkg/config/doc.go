// Package config provides configuration management for remoteuser.
//
// Configuration is loaded from defaults, then the YAML file at
// $REMOTEUSER_CONFIG_PATH/remoteuser.yml, then environment variables. The
// source of every attribute is tracked so it can be reported by
// "remoteuserctl configuration show".
//
// # Key Configuration Options
//
//   - REMOTEUSER_USERNAME_HEADERS: Trusted username headers, in priority order
//   - REMOTEUSER_ROLES_HEADER: Repeatable roles header
//   - REMOTEUSER_AUTHENTICATORS: Authenticator chain
//   - REMOTEUSER_REQUIRE_AUTHENTICATION: Reject unauthenticated requests
//   - REMOTEUSER_LOG_LEVEL: Logging verbosity
//
// The session key (REMOTEUSER_SESSION_KEY) and DATABASE_URL are secrets and
// are read by the server command directly.
package config
