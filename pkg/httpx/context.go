package httpx

import (
	"context"

	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyClaims ctxKey = "claims"
	ctxKeyRole   ctxKey = "role"
)

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserID).(string)
	return v
}

// Claims returns the verified session claims.
func Claims(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}

// Role returns the role resolved by RequireRole.
func Role(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRole).(string)
	return v
}

// WithUserID marks ctx as authenticated as userID. Tests use it to bypass
// token verification.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func withClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = WithUserID(ctx, c.Subject)
	return context.WithValue(ctx, ctxKeyClaims, c)
}
