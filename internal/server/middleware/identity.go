package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mazurov/bloglist-server/internal/apierrors"
	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/storage"
)

const bearerPrefix = "bearer "

// TokenExtractor returns middleware that pulls the bearer token out of the
// Authorization header and stores it in the request context. Requests without
// a bearer token pass through unauthenticated; downstream middleware decides
// whether that is acceptable.
func TokenExtractor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")
			if len(authorization) > len(bearerPrefix) &&
				strings.EqualFold(authorization[:len(bearerPrefix)], bearerPrefix) {
				token := authorization[len(bearerPrefix):]
				r = r.WithContext(auth.ContextWithToken(r.Context(), token))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser returns middleware that verifies the extracted token and
// resolves it to a persisted user. The resulting Identity is attached to the
// request context; verification failures are rejected before the handler runs.
func RequireUser(tokens *auth.Tokens, store storage.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.TokenFromContext(r.Context())

			userID, _, err := tokens.Verify(raw)
			if err != nil {
				logger.Debug("Token verification failed",
					"error", err,
					"remote_addr", r.RemoteAddr)
				status, msg := apierrors.MapTokenError(err)
				apierrors.WriteError(w, status, msg)
				return
			}

			// A verified token may outlive its user record
			user, err := store.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					logger.Warn("Token resolved to missing user",
						"user", userID,
						"remote_addr", r.RemoteAddr)
					apierrors.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
					return
				}
				apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
				return
			}

			identity := auth.Identity{User: user, Token: raw}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
		})
	}
}
