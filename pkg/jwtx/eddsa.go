package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues and checks session tokens.
type Signer interface {
	Sign(Claims) (string, error)
	Verify(token string) (Claims, error)
	PublicJWKS() JWKS
}

// EdDSASigner signs and verifies with a single Ed25519 key.
type EdDSASigner struct {
	kid    string
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
	now    func() time.Time
}

// NewEdDSASigner wraps key. Tokens that do not carry issuer are rejected.
func NewEdDSASigner(key ed25519.PrivateKey, issuer string) (*EdDSASigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}

	pub := key.Public().(ed25519.PublicKey)
	return &EdDSASigner{
		kid:    Thumbprint(pub),
		key:    key,
		pub:    pub,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the verification clock, for tests.
func (s *EdDSASigner) WithClock(now func() time.Time) *EdDSASigner {
	c := *s
	c.now = now
	return &c
}

// KID returns the key id placed in token headers.
func (s *EdDSASigner) KID() string { return s.kid }

// Sign serialises claims into a compact JWS.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks signature, kid, issuer, exp and nbf.
func (s *EdDSASigner) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != s.kid {
			return nil, ErrUnknownKID
		}
		return s.pub, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if claims.Subject == "" {
		return Claims{}, ErrNoSubject
	}
	return claims, nil
}

// PublicJWKS publishes the verification key.
func (s *EdDSASigner) PublicJWKS() JWKS {
	return JWKS{Keys: []JWK{NewEd25519JWK(s.kid, s.pub)}}
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
