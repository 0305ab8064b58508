package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for the editor and viewer
// apps. Responses are generated from local files, so short timeouts are safe.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}
