// Package session tracks authenticated principals across requests with a
// signed cookie.
//
// Manager is the registrar handed to authenticators: registering an identity
// issues an HS256 JWT carrying the username, roles and authentication method.
// The session Authenticator restores that identity on later requests, so
// authenticators further down the chain see the request as already
// authenticated.
package session
