package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// TokenVerifier checks a session token.
type TokenVerifier interface {
	Verify(token string) (jwtx.Claims, error)
}

// SessionToken extracts the raw token from the session cookie or, failing
// that, an Authorization: Bearer header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(authz, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// Authenticate rejects requests without a valid session token and stores the
// user id in the request context.
func Authenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := SessionToken(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Debug("session token rejected", slogx.Err(err))
				WriteError(w, http.StatusUnauthorized, "Unauthorized - invalid token")
				return
			}

			ctx = withClaims(ctx, claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches the session of a request carrying a valid
// token and lets every other request through anonymously.
func OptionalAuthenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := SessionToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := withClaims(r.Context(), claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetSessionCookie stores token in the session cookie. Cross-site
// deployments (production) need SameSite=None, which browsers only accept
// together with Secure.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, production bool) {
	http.SetCookie(w, sessionCookie(token, maxAge, production))
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, production bool) {
	http.SetCookie(w, sessionCookie("", -1, production))
}

func sessionCookie(value string, maxAge int, production bool) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
