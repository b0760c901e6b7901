// Package middleware provides the HTTP middleware that installs an
// authenticator chain in front of protected handlers.
package middleware
