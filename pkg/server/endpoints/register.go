package endpoints

import (
	"github.com/cedadev/remoteuser/pkg/server"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterLogoutEndpoint(srv)
}
