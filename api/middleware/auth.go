package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sweetorder/sweetorder-backend/api/responses"
	pkgAuth "github.com/sweetorder/sweetorder-backend/pkg/auth"
	"github.com/sweetorder/sweetorder-backend/pkg/auth/session"
	"github.com/sweetorder/sweetorder-backend/pkg/config"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/telemetry"
)

const bearerPrefix = "bearer "

// Auth validates a bearer token and seeds the request context with the claims.
// A nil verifier skips the session lookup, which leaves tokens stateless.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			userID := claims.UserID.String()
			ctx := WithUserID(r.Context(), userID)
			ctx = WithRole(ctx, string(claims.Role))
			ctx = WithAccessID(ctx, claims.ID)
			telemetry.SetUser(ctx, userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (*pkgAuth.AccessTokenClaims, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if err := checkSession(r.Context(), verifier, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

// bearerToken accepts "Bearer <jwt>" in any case, or a bare token.
func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) >= len(bearerPrefix) && strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		raw = strings.TrimSpace(raw[len(bearerPrefix):])
	}
	return raw, raw != ""
}

func checkSession(ctx context.Context, verifier session.AccessSessionChecker, accessID string) error {
	if verifier == nil {
		return nil
	}
	ok, err := verifier.HasSession(ctx, accessID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked or expired")
	}
	return nil
}
