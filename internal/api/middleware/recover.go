package middleware

import (
	"fmt"
	"net/http"

	"github.com/cloo-solutions/askai/internal/api"
	"github.com/cloo-solutions/askai/internal/telemetry"
	"go.uber.org/zap"
)

// Recover turns a panic into a 500 JSON response so the server keeps serving.
// http.ErrAbortHandler is re-raised for net/http to handle.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				telemetry.RecoverPanic(r.Context(), rec)
				api.Error(w, http.StatusInternalServerError, fmt.Sprintf("Server error: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
