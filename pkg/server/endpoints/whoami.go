package endpoints

import (
	"net/http"
	"time"

	"github.com/cedadev/remoteuser/pkg/audit"
	"github.com/cedadev/remoteuser/pkg/identity"
	"github.com/cedadev/remoteuser/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	Username   string     `json:"username"`
	Roles      []string   `json:"roles"`
	AuthMethod string     `json:"auth_method"`
	ClientIP   string     `json:"client_ip"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	// Create a subrouter for /whoami behind the authenticator chain
	whoamiRouter := s.Router.PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(s.Authentication.Middleware)

	whoamiRouter.HandleFunc("", handleWhoami(s.Auditor)).Methods("GET")
}

func handleWhoami(auditor audit.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			auditor.Log(audit.WhoamiEvent{ClientIP: r.RemoteAddr, Success: false})
			respondWithError(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		clientIP := ""
		if ip := identity.ClientIP(r); ip != nil {
			clientIP = ip.String()
		}

		response := WhoamiResponse{
			Username:   id.Username,
			Roles:      id.Roles,
			AuthMethod: id.AuthMethod,
			ClientIP:   clientIP,
		}
		if !id.ExpiresAt.IsZero() {
			expiresAt := id.ExpiresAt.UTC()
			response.ExpiresAt = &expiresAt
		}

		auditor.Log(audit.WhoamiEvent{User: id.Username, ClientIP: r.RemoteAddr, Success: true})
		respondWithJSON(w, http.StatusOK, response)
	}
}
