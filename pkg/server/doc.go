// Package server provides the reference HTTP server that installs the
// authenticator chain in front of protected endpoints.
//
// It uses gorilla/mux for routing. Every request passes through
// gorilla/handlers for panic recovery, combined access logging and
// X-Forwarded-For handling before reaching the router.
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, server.Options{
//	    Port:       "8080",
//	    SessionKey: key,
//	    Log:        log,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Reloading
//
// Reload validates a new configuration and rebuilds the authenticators,
// session manager and middleware state from it without restarting the
// listener.
package server
