package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// Session is a signed session token ready to be set as a cookie.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Sessions turns an authenticated user into a session.
type Sessions interface {
	Issue(ctx context.Context, u domain.User) (Session, error)
}

// SessionIssuer signs session JWTs for users.
type SessionIssuer struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (s *SessionIssuer) Issue(ctx context.Context, u domain.User) (Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	now := clock(s.Now)

	claims := jwtx.NewSessionClaims(u.ID, s.Issuer, ttl, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign session token",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return Session{}, err
	}

	return Session{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks a session token. It satisfies httpx.TokenVerifier.
func (s *SessionIssuer) Verify(token string) (jwtx.Claims, error) {
	return s.Signer.Verify(token)
}

// MaxAge is the cookie lifetime in seconds.
func (s *SessionIssuer) MaxAge() int {
	if s.TTL <= 0 {
		return int(jwtx.DefaultSessionTTL / time.Second)
	}
	return int(s.TTL / time.Second)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
