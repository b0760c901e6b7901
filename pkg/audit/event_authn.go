package audit

import (
	"fmt"
	"strings"
)

// AuthenticateEvent represents an authentication audit event
type AuthenticateEvent struct {
	User              string
	Roles             []string
	ClientIP          string
	AuthenticatorName string
	AuthMethod        string
	Success           bool
	ErrorMessage      string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	user := e.User
	if user == "" {
		user = "anonymous"
	}
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with authenticator %s", user, e.AuthenticatorName)
	}
	msg := fmt.Sprintf("%s failed to authenticate with authenticator %s", user, e.AuthenticatorName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.AuthenticatorName,
			"user":          e.User,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
	if e.AuthMethod != "" {
		sd[SDIDAuth]["method"] = e.AuthMethod
	}
	if len(e.Roles) > 0 {
		sd[SDIDSubject] = map[string]string{
			"roles": strings.Join(e.Roles, ","),
		}
	}
	return sd
}
