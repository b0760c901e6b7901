// Package store provides storage abstractions for the server endpoints.
//
// Endpoints depend on these interfaces rather than on a database, so they
// can be tested with mocks and run without a database at all.
//
// # Available Stores
//
//   - HealthStore: Database connectivity check for GET /health
//
// Implementations backed by GORM live in the gorm subpackage.
package store
