package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	h "convoke/internal/delivery/http/helpers"
)

// Recovery catches panics from downstream handlers, logs the stack trace,
// and responds with a 500 JSON error instead of dropping the connection.
func Recovery(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
