package server

import (
	"net/http"
	"time"

	"lottus/internal/logger"
)

// RequestLogger logs incoming requests at debug level — the share server
// is chatty when a phone polls it, and those lines belong in the log
// file, not the terminal.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Debug("server: %s %s -> %d (%dms)",
				r.Method, r.URL.Path, sw.status, time.Since(start).Milliseconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
