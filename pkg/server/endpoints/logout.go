package endpoints

import (
	"net/http"

	"github.com/cedadev/remoteuser/pkg/audit"
	"github.com/cedadev/remoteuser/pkg/server"
)

// RegisterLogoutEndpoint registers the /logout endpoint
func RegisterLogoutEndpoint(s *server.Server) {
	s.Router.HandleFunc("/logout", handleLogout(s)).Methods("POST")
}

// handleLogout ends the session. It does not run the authenticator chain:
// trusted headers would only start a new session.
func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := s.Sessions()
		if id, err := sessions.FromRequest(r); err == nil {
			s.Auditor.Log(audit.LogoutEvent{User: id.Username, ClientIP: r.RemoteAddr})
		}

		sessions.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
