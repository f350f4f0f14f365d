package middleware

import (
	"net/http"
	"strings"

	"github.com/istochnik/delivery-backend/api/responses"
	pkgauth "github.com/istochnik/delivery-backend/pkg/auth"
	"github.com/istochnik/delivery-backend/pkg/config"
	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
	"github.com/istochnik/delivery-backend/pkg/logger"
)

// DriverAuth validates the driver bearer token and seeds the request context
// with the driver identity.
func DriverAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseDriverToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithDriver(r.Context(), claims.DriverID, claims.Name)
			if logg != nil {
				ctx = logg.WithDriverID(ctx, claims.DriverID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
