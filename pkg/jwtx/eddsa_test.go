package jwtx_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://lostfound.test"

func newSigner(t *testing.T) *jwtx.EdDSASigner {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s, err := jwtx.NewEdDSASigner(key, testIssuer)
	require.NoError(t, err)
	return s
}

func TestEdDSASigner_SignAndVerify(t *testing.T) {
	s := newSigner(t)
	now := time.Now()

	token, err := s.Sign(jwtx.NewSessionClaims("user-1", testIssuer, time.Hour, now))
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, testIssuer, claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestEdDSASigner_Rejects(t *testing.T) {
	s := newSigner(t)
	other := newSigner(t)
	now := time.Now()

	valid, err := s.Sign(jwtx.NewSessionClaims("user-1", testIssuer, time.Hour, now))
	require.NoError(t, err)

	expired, err := s.Sign(jwtx.NewSessionClaims("user-1", testIssuer, time.Hour, now.Add(-2*time.Hour)))
	require.NoError(t, err)

	wrongIssuer, err := s.Sign(jwtx.NewSessionClaims("user-1", "https://elsewhere", time.Hour, now))
	require.NoError(t, err)

	fromOther, err := other.Sign(jwtx.NewSessionClaims("user-1", testIssuer, time.Hour, now))
	require.NoError(t, err)

	noSubject, err := s.Sign(jwtx.NewSessionClaims("", testIssuer, time.Hour, now))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone,
		jwtx.NewSessionClaims("user-1", testIssuer, time.Hour, now)).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, jwtx.ErrExpired},
		{"wrong issuer", wrongIssuer, jwtx.ErrIssuer},
		{"other key", fromOther, jwtx.ErrUnknownKID},
		{"no subject", noSubject, jwtx.ErrNoSubject},
		{"alg none", unsigned, jwtx.ErrInvalidSig},
		{"garbage", "not.a.jwt", jwtx.ErrMalformed},
		{"bad signature", tampered, jwtx.ErrInvalidSig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEdDSASigner_WithClock(t *testing.T) {
	s := newSigner(t)
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	token, err := s.Sign(jwtx.NewSessionClaims("user-1", testIssuer, time.Hour, issued))
	require.NoError(t, err)

	_, err = s.WithClock(func() time.Time { return issued.Add(30 * time.Minute) }).Verify(token)
	require.NoError(t, err)

	_, err = s.WithClock(func() time.Time { return issued.Add(2 * time.Hour) }).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestEdDSASigner_PublicJWKS(t *testing.T) {
	s := newSigner(t)

	jwks := s.PublicJWKS()
	require.Len(t, jwks.Keys, 1)

	k := jwks.Keys[0]
	require.Equal(t, "OKP", k.Kty)
	require.Equal(t, "Ed25519", k.Crv)
	require.Equal(t, "EdDSA", k.Alg)
	require.Equal(t, s.KID(), k.Kid)
	require.Len(t, k.X, 43)
}

func TestNewEdDSASigner_InvalidKey(t *testing.T) {
	_, err := jwtx.NewEdDSASigner(ed25519.PrivateKey([]byte("short")), testIssuer)
	require.Error(t, err)
}

func TestThumbprint_Stable(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	require.Equal(t, jwtx.Thumbprint(pub), jwtx.Thumbprint(pub))
	require.Len(t, jwtx.Thumbprint(pub), 43)
}
