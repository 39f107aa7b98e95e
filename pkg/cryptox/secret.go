package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pepperBytes = 32

// LoadOrCreatePepper reads the pepper stored at path, generating and
// persisting a new random one on first use. Losing the file invalidates every
// stored password hash.
func LoadOrCreatePepper(path string) (string, error) {
	raw, err := loadOrCreate(path, func() ([]byte, error) {
		s, err := RandomToken(pepperBytes)
		return []byte(s), err
	})
	if err != nil {
		return "", fmt.Errorf("cryptox: pepper: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// LoadOrCreateEd25519Key reads a PKCS8 PEM encoded Ed25519 private key from
// path, generating one if the file does not exist.
func LoadOrCreateEd25519Key(path string) (ed25519.PrivateKey, error) {
	raw, err := loadOrCreate(path, GenerateEd25519Key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: ed25519 key: %w", err)
	}
	return ParseEd25519Key(raw)
}

// GenerateEd25519Key returns a new Ed25519 private key as PKCS8 PEM.
func GenerateEd25519Key() ([]byte, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal pkcs8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParseEd25519Key decodes a PKCS8 PEM block holding an Ed25519 key.
func ParseEd25519Key(data []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("cryptox: no PEM block found")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: parse pkcs8: %w", err)
	}

	edKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("cryptox: expected ed25519 key, got %T", key)
	}
	return edKey, nil
}

func loadOrCreate(path string, generate func() ([]byte, error)) ([]byte, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	data, err = generate()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	return data, nil
}
