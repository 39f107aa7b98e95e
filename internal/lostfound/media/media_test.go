package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, max int64) *DiskStore {
	t.Helper()
	s := NewDiskStore(t.TempDir(), max)
	s.Now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestGroupFor(t *testing.T) {
	require.Equal(t, GroupProfiles, GroupFor("profileImage", domain.PostTypeLostItem))
	require.Equal(t, GroupPersons, GroupFor("personImages", ""))
	require.Equal(t, GroupItems, GroupFor("itemImages", ""))
	require.Equal(t, GroupPersons, GroupFor("other", domain.PostTypeFoundPerson))
	require.Equal(t, GroupItems, GroupFor("other", domain.PostTypeLostItem))
	require.Equal(t, GroupMisc, GroupFor("other", ""))
}

func TestDiskStore_Save(t *testing.T) {
	s := newTestStore(t, 1024)

	url, err := s.Save(context.Background(), GroupPersons, "Photo.JPG", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/posts/persons/2025/03/"), url)
	require.True(t, strings.HasSuffix(url, ".jpg"), url)

	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(strings.TrimPrefix(url, URLPrefix))))
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))

	other, err := s.Save(context.Background(), GroupPersons, "photo.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	require.NotEqual(t, url, other)
}

func TestDiskStore_SaveRejects(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		body        string
		want        error
	}{
		{"wrong extension", "doc.pdf", "image/png", "x", ErrNotImage},
		{"wrong mime", "pic.png", "application/pdf", "x", ErrNotImage},
		{"no extension", "pic", "image/png", "x", ErrNotImage},
		{"too large", "pic.png", "image/png", strings.Repeat("a", 17), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, 16)
			_, err := s.Save(context.Background(), GroupMisc, tt.filename, tt.contentType, strings.NewReader(tt.body))
			require.ErrorIs(t, err, tt.want)

			// Nothing may be left behind.
			var files []string
			_ = filepath.Walk(s.Root, func(p string, info os.FileInfo, err error) error {
				if err == nil && !info.IsDir() {
					files = append(files, p)
				}
				return nil
			})
			require.Empty(t, files)
		})
	}
}

func TestDiskStore_SaveAtLimit(t *testing.T) {
	s := newTestStore(t, 16)
	_, err := s.Save(context.Background(), GroupMisc, "pic.webp", "image/webp; charset=binary", bytes.NewReader(make([]byte, 16)))
	require.NoError(t, err)
}

func TestDiskStore_RemoveAndServe(t *testing.T) {
	s := newTestStore(t, 1024)
	url, err := s.Save(context.Background(), GroupItems, "a.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "png", string(body))

	resp, err = http.Get(srv.URL + "/uploads/posts/items/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, s.Remove(url))
	require.NoError(t, s.Remove(url), "removing twice is fine")
	require.NoError(t, s.Remove("https://elsewhere/x.png"))

	resp, err = http.Get(srv.URL + url)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
