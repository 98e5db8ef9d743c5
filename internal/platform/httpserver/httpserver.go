package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. No WriteTimeout: export bundle downloads can be
// large and their pacing belongs to the client, while slow-loris protection
// comes from ReadHeaderTimeout and the per-route Timeout middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
