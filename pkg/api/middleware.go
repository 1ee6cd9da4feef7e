package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// requestLogger logs one line per request with method, path, status, and
// latency.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
