package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// ErrUnknownSubject is returned by a RoleLookup when the authenticated user
// no longer exists.
var ErrUnknownSubject = errors.New("httpx: unknown subject")

// RoleLookup resolves the current role of a user.
type RoleLookup func(ctx context.Context, userID string) (string, error)

// RequireRole must run after Authenticate. The role is read from the user
// record on every request so revocations apply without waiting for the
// session to expire.
func RequireRole(lookup RoleLookup, role, forbidden string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := UserID(ctx)
			if userID == "" {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			have, err := lookup(ctx, userID)
			switch {
			case errors.Is(err, ErrUnknownSubject):
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			case err != nil:
				slogx.FromContext(ctx).Error("role lookup failed", slogx.Err(err))
				WriteError(w, http.StatusInternalServerError, "Server error")
				return
			case have != role:
				WriteError(w, http.StatusForbidden, forbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKeyRole, have)))
		})
	}
}
