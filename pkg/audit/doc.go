// Package audit records authentication events.
//
// Events are written as RFC5424 syslog lines and, when a database is
// configured, persisted to the audit_messages table. Every event has a
// message ID (authn, identity-check, logout), a severity, a facility and a
// set of structured data elements describing the user, client and action.
//
//	trail := audit.NewTrail(audit.NewLogger(os.Stdout), store, log)
//	trail.Log(audit.AuthenticateEvent{User: "alice", AuthenticatorName: "remote-user", Success: true})
package audit
