package middleware

import (
	"log"
	"net/http"
	"time"
)

// responseWriter records the first status code a downstream handler writes.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) Status() int {
	return rw.status
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

// Logging writes one line per request: method, path, status and latency.
// Request bodies never appear here; sign-up and sign-in payloads carry
// credentials and profile data.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		status := wrapped.status
		if status == 0 {
			// Handler wrote the body without an explicit header.
			status = http.StatusOK
		}

		log.Printf(
			"%s %s %d in %s",
			r.Method,
			r.URL.Path,
			status,
			time.Since(start),
		)
	})
}
