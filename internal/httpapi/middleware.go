package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/facewarden/server/internal/attend/service"
)

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// requireAdmin gates administrative handlers behind the configured
// authorization policy.  The caller presents its key in X-API-Key.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if s.authz.Authorize(r.Context(), key) != service.DecisionAllow {
			writeError(w, http.StatusForbidden, "forbidden", "admin authorization required")
			return
		}
		next(w, r)
	}
}
