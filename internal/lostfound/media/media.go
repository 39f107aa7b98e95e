// Package media stores uploaded report images on local disk and serves them
// back under a URL prefix.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/google/uuid"
)

// Group is the sub-directory an upload is filed under.
type Group string

const (
	GroupProfiles Group = "profiles"
	GroupPersons  Group = "posts/persons"
	GroupItems    Group = "posts/items"
	GroupMisc     Group = "misc"
)

const (
	// URLPrefix is where stored files are served.
	URLPrefix = "/uploads/"

	// DefaultMaxBytes is the per-file size limit.
	DefaultMaxBytes = 10 << 20
)

var (
	ErrNotImage = errors.New("Only image files are allowed!")
	ErrTooLarge = errors.New("File too large")
)

var allowedExt = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// GroupFor picks the group for a multipart field of a report of type t.
func GroupFor(field string, t domain.PostType) Group {
	switch {
	case field == "profileImage":
		return GroupProfiles
	case field == "personImages" || t.IsPerson():
		return GroupPersons
	case field == "itemImages" || t.Valid():
		return GroupItems
	}
	return GroupMisc
}

// DiskStore writes files to <Root>/<group>/<yyyy>/<mm>/<uuid><ext>.
type DiskStore struct {
	Root     string
	MaxBytes int64
	Now      func() time.Time
}

func NewDiskStore(root string, maxBytes int64) *DiskStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &DiskStore{Root: root, MaxBytes: maxBytes, Now: time.Now}
}

// Save validates and stores one image and returns its public URL.
func (s *DiskStore) Save(ctx context.Context, group Group, filename, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	if !allowedExt[ext] || !allowedMIME[strings.TrimSpace(mediaType)] {
		return "", ErrNotImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	rel := path.Join(string(group), now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
	dst := filepath.Join(s.Root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("media: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("media: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, s.MaxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("media: write: %w", err)
	}
	if n > s.MaxBytes {
		return "", ErrTooLarge
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("media: commit: %w", err)
	}
	return URLPrefix + rel, nil
}

// Remove deletes a file previously returned by Save. Unknown URLs are
// ignored.
func (s *DiskStore) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Handler serves stored files. Directory listings are refused.
func (s *DiskStore) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.Root))
	return http.StripPrefix(strings.TrimSuffix(URLPrefix, "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	}))
}
