// Package gorm implements the store interfaces on a GORM connection to the
// PostgreSQL database that holds audit_messages.
package gorm
