package app

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg, err := ParseConfig()
	require.NoError(t, err)

	cfg.Env = "test"
	cfg.LogLevel = "error"
	cfg.DatabaseFile = filepath.Join(dir, "lostfound.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.SessionKeyFile = filepath.Join(dir, "session.key")
	cfg.UploadsDir = filepath.Join(dir, "uploads")
	cfg.HousekeepingInterval = time.Hour
	cfg.Bootstrap = BootstrapConfig{
		Email:    "root@example.com",
		Name:     "Root",
		Password: "root-password",
	}
	return cfg
}

func TestNew_WiresServices(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.router)
	defer srv.Close()

	client := lostfoundsdk.NewSDKClient(srv.URL)

	health, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)

	session, user, err := client.Login(t.Context(), "root@example.com", "root-password")
	require.NoError(t, err)
	require.Equal(t, "admin", user.User.Role)

	created, err := session.CreateInvite(t.Context(), "new-admin@example.com")
	require.NoError(t, err)
	require.Equal(t, "pending", created.Invite.Status)
	require.Contains(t, created.AcceptURL, cfg.ClientURL+"/accept-admin?token=")

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
}

func TestNew_ReusesSecrets(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	require.NoError(t, err)
	kid := first.signer.KID()
	require.NoError(t, first.db.Close())

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.db.Close() })

	require.Equal(t, kid, second.signer.KID())

	// The bootstrap admin from the first start still logs in, so the pepper
	// was reused too.
	srv := httptest.NewServer(second.router)
	defer srv.Close()
	_, _, err = lostfoundsdk.NewSDKClient(srv.URL).Login(t.Context(), "root@example.com", "root-password")
	require.NoError(t, err)
}
