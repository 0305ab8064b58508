// Package middleware provides the HTTP middleware shared by the editor and
// viewer apps.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Recorder counts served requests.
type Recorder interface {
	RecordRequest(app, method string)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequestLog logs every request with its status and duration, and counts it
// when a recorder is given. app labels which binary served it.
func RequestLog(logger *slog.Logger, recorder Recorder, app string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			if recorder != nil {
				recorder.RecordRequest(app, r.Method)
			}
			logger.Info("request served",
				"app", app,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
			)
		})
	}
}
