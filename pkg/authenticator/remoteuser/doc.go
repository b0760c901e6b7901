// Package remoteuser implements an authenticator that trusts a reverse proxy
// to have authenticated the user already.
//
// The username is read from the first non-empty header of an ordered list
// (remote-user, then x-remote-user) and the roles from every occurrence of
// x-remote-user-roles. Header values are not verified in any way: the network
// path must guarantee that clients cannot set these headers themselves.
package remoteuser
