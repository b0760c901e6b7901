// Command remoteuserctl runs a reference HTTP server that authenticates
// requests from trusted reverse-proxy headers.
//
// A request is authenticated by the first of the remote-user and
// x-remote-user headers with a non-empty value. Every x-remote-user-roles
// header adds one role. A signed session cookie then carries the principal
// on later requests.
//
// # Architecture
//
//   - pkg/authenticator: Authenticator interface, registry and chain
//   - pkg/authenticator/remoteuser: Trusted header authenticator
//   - pkg/session: Session cookie issuing and restoring
//   - pkg/server: HTTP server, middleware and endpoints
//   - pkg/audit: RFC5424 audit trail
//   - pkg/config: Configuration management
//   - pkg/db: Database connection and migrations
//
// # Quick Start
//
//	# Generate a session signing key
//	export REMOTEUSER_SESSION_KEY=$(remoteuserctl session-key generate)
//
//	# Optionally persist audit records
//	export DATABASE_URL=postgres://localhost/remoteuser?sslmode=disable
//
//	# Start the server
//	remoteuserctl server
//
// # Environment Variables
//
//   - REMOTEUSER_SESSION_KEY: Base64-encoded 256-bit session signing key
//   - REMOTEUSER_CONFIG_PATH: Directory containing remoteuser.yml
//   - REMOTEUSER_AUTHENTICATORS: Comma-separated authenticator chain
//   - REMOTEUSER_LOG_LEVEL: Log level (debug, info, warn, error)
//   - DATABASE_URL: PostgreSQL connection string
//   - PORT: Server port (default: 8080)
package main
