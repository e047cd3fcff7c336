package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"subbrain/internal/httputil"
)

// Recovery turns a handler panic into a logged 500 problem response.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				attrs := []any{
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				}
				if userID, ok := httputil.UserIDFromContext(r.Context()); ok {
					attrs = append(attrs, "user_id", userID)
				}
				logger.Error("panic recovered", attrs...)

				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
