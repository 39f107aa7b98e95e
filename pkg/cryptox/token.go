package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// InviteTokenBytes is the entropy of an invite token (256 bits, 43 chars base64url).
const InviteTokenBytes = 32

// RandomToken returns n random bytes encoded as unpadded base64url.
func RandomToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("cryptox: token length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewInviteToken returns a fresh invite token and the fingerprint to persist.
// The plaintext token must never be stored.
func NewInviteToken() (token, fingerprint string, err error) {
	token, err = RandomToken(InviteTokenBytes)
	if err != nil {
		return "", "", err
	}
	return token, Fingerprint(token), nil
}

// Fingerprint is the SHA-256 digest of token, base64url encoded. Lookups by
// token go through the fingerprint so a leaked database does not leak
// usable capabilities.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// EqualFingerprint compares a plaintext token with a stored fingerprint in
// constant time.
func EqualFingerprint(token, fingerprint string) bool {
	return subtle.ConstantTimeCompare([]byte(Fingerprint(token)), []byte(fingerprint)) == 1
}
