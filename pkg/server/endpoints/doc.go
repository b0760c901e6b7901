// Package endpoints registers the HTTP endpoints of the reference server.
//
//   - GET /               status and version
//   - GET /authenticators installed, enabled and chained authenticators
//   - GET /health         database connectivity
//   - GET /whoami         the authenticated principal (protected)
//   - POST /logout        ends the session
package endpoints
