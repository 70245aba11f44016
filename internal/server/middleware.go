package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	jsonwriter "github.com/sukhira/storefront/internal/json"
	"github.com/sukhira/storefront/internal/log"
)

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware tags each request with a correlation id and logs method,
// path, status and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		log.LogInfoWithFields("http", "Request handled", map[string]any{
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"duration":  time.Since(start).String(),
		})
	})
}

// RecoverMiddleware converts handler panics into 500 responses instead of
// killing the connection
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.LogErrorWithFields("http", "Handler panic", map[string]any{
					"path":  r.URL.Path,
					"panic": rec,
				})
				jsonwriter.WriteInternalServerError(w, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
