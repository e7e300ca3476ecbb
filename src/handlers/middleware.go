// backend/src/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/security"
	"github.com/username/gasfluxo/backend/src/utils"
)

// Chaves de contexto próprias do pacote.
type contextKey string

const (
	requestIDContextKey contextKey = "requestID"
	unitIDContextKey    contextKey = "unitID"
)

// GetUnitIDFromContext returns the authenticated business unit for this
// request. Every store and service call takes the unit as an explicit
// parameter; the context is only the transport from the auth boundary to the
// handler.
func GetUnitIDFromContext(ctx context.Context) (string, bool) {
	unitID, ok := ctx.Value(unitIDContextKey).(string)
	return unitID, ok && unitID != ""
}

// ContextualLoggerMiddleware cria um logger com um requestID para cada requisição.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware validates the bearer token and injects the unit claim into
// the request context and the contextual logger.
func AuthMiddleware(authService *security.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger := logger.FromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				ctxLogger.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
				utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				ctxLogger.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
				utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
				return
			}

			unitID, err := authService.ValidateToken(tokenString)
			if err != nil {
				ctxLogger.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
				utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			enrichedLogger := ctxLogger.With(slog.String("unitID", unitID))
			ctx := logger.ToContext(r.Context(), enrichedLogger)
			ctx = context.WithValue(ctx, unitIDContextKey, unitID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
