package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
	"github.com/stretchr/testify/require"
)

func TestParseListArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    lostfoundsdk.ListQuery
		wantErr bool
	}{
		{name: "empty", args: nil, want: lostfoundsdk.ListQuery{}},
		{name: "query words", args: []string{"jane", "doe"}, want: lostfoundsdk.ListQuery{Q: "jane doe"}},
		{name: "flags", args: []string{"--page", "2", "-l", "50", "jane"}, want: lostfoundsdk.ListQuery{Q: "jane", Page: 2, Limit: 50}},
		{name: "missing value", args: []string{"--page"}, wantErr: true},
		{name: "not a number", args: []string{"--limit", "lots"}, wantErr: true},
		{name: "zero", args: []string{"--page", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseListArgs(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSessionPath(t *testing.T) {
	t.Setenv("LOSTFOUND_SESSION", "/tmp/explicit")
	require.Equal(t, "/tmp/explicit", sessionPath())

	t.Setenv("LOSTFOUND_SESSION", "")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	require.Equal(t, filepath.Join("/cfg", "lostfound", "session"), sessionPath())
}

func TestLoginStoresSession(t *testing.T) {
	t.Setenv("LOSTFOUND_PASSWORD", "")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: lostfoundsdk.SessionCookieName, Value: "session-token", MaxAge: 3600})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"u1","name":"Admin","email":"admin@example.com","role":"admin"}}`))
	})
	mux.HandleFunc("GET /api/admin/invites", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"invites":[{"id":"i1","email":"jane@example.com","status":"pending"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var out bytes.Buffer
	c := &cli{
		client:      lostfoundsdk.NewSDKClient(srv.URL),
		sessionPath: filepath.Join(t.TempDir(), "lostfound", "session"),
		in:          bufio.NewReader(strings.NewReader("secret\n")),
		out:         &out,
	}
	ctx := context.Background()

	_, err := c.session()
	require.ErrorIs(t, err, errNotLoggedIn)

	require.NoError(t, c.login(ctx, []string{"admin@example.com"}))

	session, err := c.session()
	require.NoError(t, err)
	require.Equal(t, "session-token", session.Token())

	require.NoError(t, c.invite(ctx, []string{"list"}))
	require.Contains(t, out.String(), "jane@example.com")
}
