package middleware

import (
	"net/http"

	"github.com/robml/dbaccounting/api/responses"
	pkgerrors "github.com/robml/dbaccounting/pkg/errors"
	"github.com/robml/dbaccounting/pkg/logger"
)

// RequirePermission gates a route on the named permission from the token claims.
func RequirePermission(permission string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !claims.HasPermission(permission) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "permission required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
