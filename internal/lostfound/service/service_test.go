package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/mail"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store/drivers/sqlite"
	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)

const testClientURL = "http://localhost:5173"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []mail.AdminInvite
	err  error
}

func (n *recordingNotifier) SendAdminInvite(_ context.Context, msg mail.AdminInvite) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) mail.AdminInvite {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

type fixture struct {
	store    *sqlite.Store
	clock    *testClock
	hasher   *cryptox.PasswordHasher
	sessions *SessionIssuer
	notifier *recordingNotifier

	invites *InviteService
	auth    *AuthService
	admin   *AdminService
}

var fastArgon2 = cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "service.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewEdDSASigner(key, "lostfound-test")
	require.NoError(t, err)

	clk := &testClock{t: t0}
	signer = signer.WithClock(clk.Now)

	f := &fixture{
		store:    st,
		clock:    clk,
		hasher:   cryptox.NewPasswordHasher("pepper").WithParams(fastArgon2),
		notifier: &recordingNotifier{},
	}
	f.sessions = &SessionIssuer{Signer: signer, Issuer: "lostfound-test", TTL: time.Hour, Now: clk.Now}
	f.invites = &InviteService{
		Store:     st,
		Notifier:  f.notifier,
		Sessions:  f.sessions,
		Hasher:    f.hasher,
		ClientURL: testClientURL,
		TTL:       DefaultInviteTTL,
		Now:       clk.Now,
	}
	f.auth = &AuthService{Store: st, Hasher: f.hasher, Sessions: f.sessions, Now: clk.Now}
	f.admin = &AdminService{Store: st, Now: clk.Now}
	return f
}

func (f *fixture) seedUser(t *testing.T, name, email, password string, role domain.Role) domain.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)

	now := f.clock.Now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), u))
	return u
}

func (f *fixture) invite(t *testing.T, id string) domain.Invite {
	t.Helper()
	inv, err := f.store.Invites().GetInviteByID(context.Background(), id)
	require.NoError(t, err)
	return inv
}

func (f *fixture) pendingFor(t *testing.T, email string) []domain.Invite {
	t.Helper()
	all, err := f.store.Invites().ListInvites(context.Background(), 1000)
	require.NoError(t, err)

	var out []domain.Invite
	for _, inv := range all {
		if inv.Email == email && inv.Status == domain.InviteStatusPending {
			out = append(out, inv)
		}
	}
	return out
}
