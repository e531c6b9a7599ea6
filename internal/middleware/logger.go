package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/AJ-Gazin/IdenticAI-API/internal/infra/geoip"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger emits one structured record per request. The geoip resolver is
// optional; without it the country field is simply omitted.
func Logger(l zerolog.Logger, countries geoip.CountryResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			event := l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("duration", time.Since(start))
			if rid := RequestIDFromContext(r.Context()); rid != "" {
				event = event.Str("request_id", rid)
			}
			if countries != nil {
				if code, err := countries.CountryCode(clientIPForRateLimit(r)); err == nil && code != "" {
					event = event.Str("country", code)
				}
			}
			event.Msg("request completed")
		})
	}
}
