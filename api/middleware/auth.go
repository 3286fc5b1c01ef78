package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/mechanix-app/mechanix-backend/api/responses"
	pkgauth "github.com/mechanix-app/mechanix-backend/pkg/auth"
	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal identifies the authenticated caller.
type Principal struct {
	UserID int64
	Role   enums.UserRole
}

// PrincipalFromContext pulls the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey).(Principal)
	return principal, ok
}

// Authenticator requires a valid access token and attaches the principal to
// the request context.
func Authenticator(jwtCfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				responses.Error(r.Context(), w, logg, err)
				return
			}

			claims, err := pkgauth.ParseToken(jwtCfg, token, enums.TokenTypeAccess)
			if err != nil {
				responses.Error(r.Context(), w, logg,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token"))
				return
			}

			principal := Principal{UserID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.FormatInt(principal.UserID, 10))
				ctx = logg.WithActorRole(ctx, principal.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated callers outside the allowed set. It must
// run after Authenticator.
func RequireRoles(logg *logger.Logger, allowed ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				responses.Error(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !principal.Role.OneOf(allowed...) {
				responses.Error(r.Context(), w, logg,
					pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header is required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header must be a bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}
