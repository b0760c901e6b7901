package endpoints

import (
	"net/http"

	"github.com/cedadev/remoteuser/pkg/server"
	"github.com/cedadev/remoteuser/pkg/server/store"
)

// StatusResponse represents the response from /
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// AuthenticatorsResponse represents the response from /authenticators
type AuthenticatorsResponse struct {
	Installed []string `json:"installed"`
	Enabled   []string `json:"enabled"`
	Chain     []string `json:"chain"`
}

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and info endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status (no auth required)
	s.Router.HandleFunc("/", handleStatus(s.Version)).Methods("GET")

	// GET /authenticators - List authenticators (no auth required)
	s.Router.HandleFunc("/authenticators", handleAuthenticators(s)).Methods("GET")

	// GET /health - Database connectivity and schema (no auth required)
	s.Router.HandleFunc("/health", handleHealth(s.HealthStore)).Methods("GET")
}

func handleStatus(version string) http.HandlerFunc {
	if version == "" {
		version = "dev"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok", Version: version})
	}
}

func handleAuthenticators(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, AuthenticatorsResponse{
			Installed: s.Registry.Installed(),
			Enabled:   s.Registry.Enabled(),
			Chain:     s.Authentication.Chain().Names(),
		})
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if healthStore == nil {
			respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "not configured"})
			return
		}

		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "error",
				Database: "unreachable",
				Error:    "database connectivity check failed",
			})
			return
		}

		if err := healthStore.CheckSchema(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "error",
				Database: "not migrated",
				Error:    "audit schema check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
	}
}
