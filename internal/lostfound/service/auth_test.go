package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Signup(ctx, " Alice ", "Alice@X.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "Alice", res.User.Name)
	require.Equal(t, "alice@x.com", res.User.Email)
	require.Equal(t, domain.RoleUser, res.User.Role)
	require.False(t, res.User.IsVerified)
	require.Empty(t, res.User.PasswordHash)
	require.NotEmpty(t, res.Session.Token)
	require.Equal(t, t0.Add(time.Hour), res.Session.ExpiresAt)

	_, err = f.auth.Signup(ctx, "Other", "alice@x.com", "pw")
	require.ErrorIs(t, err, ErrConflict)
	require.EqualError(t, err, "User already exists")
}

func TestAuthSignup_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password string
	}{
		{"no name", "", "a@x.com", "pw"},
		{"no email", "A", "", "pw"},
		{"no password", "A", "a@x.com", ""},
		{"bad email", "A", "nope", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(ctx, tt.userName, tt.email, tt.password)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "Bob", "bob@x.com", "correct horse", domain.RoleUser)

	f.clock.Advance(time.Hour)
	res, err := f.auth.Login(ctx, "BOB@x.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)
	require.NotNil(t, res.User.LastLogin)

	stored, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	require.Equal(t, t0.Add(time.Hour), *stored.LastLogin)

	claims, err := f.sessions.Verify(res.Session.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "lostfound-test", claims.Issuer)
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "Bob", "bob@x.com", "correct horse", domain.RoleUser)

	for _, tc := range [][2]string{
		{"bob@x.com", "wrong"},
		{"nobody@x.com", "correct horse"},
		{"", ""},
	} {
		_, err := f.auth.Login(ctx, tc[0], tc[1])
		require.ErrorIs(t, err, ErrValidation)
		require.EqualError(t, err, "Invalid credentials")
	}
}

func TestAuthCurrentUserAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "Root", "root@x.com", "pw", domain.RoleAdmin)

	u, err := f.auth.CurrentUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Empty(t, u.PasswordHash)

	role, err := f.auth.RoleOf(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, role)

	_, err = f.auth.RoleOf(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionIssuer_MaxAge(t *testing.T) {
	require.Equal(t, 3600, (&SessionIssuer{TTL: time.Hour}).MaxAge())
	require.Equal(t, 7*24*3600, (&SessionIssuer{}).MaxAge())
}

func TestBootstrap_EnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := &BootstrapService{Store: f.store, Hasher: f.hasher, Now: f.clock.Now}

	created, err := b.EnsureAdmin(ctx, BootstrapAdmin{Email: "Root@x.com", Password: "pw"})
	require.NoError(t, err)
	require.True(t, created)

	u, err := f.store.Users().GetUserByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	require.Equal(t, "Administrator", u.Name)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.True(t, u.IsVerified)

	created, err = b.EnsureAdmin(ctx, BootstrapAdmin{Email: "root@x.com", Password: "other"})
	require.NoError(t, err)
	require.False(t, created)

	_, err = b.EnsureAdmin(ctx, BootstrapAdmin{Email: "x@x.com"})
	require.ErrorIs(t, err, ErrValidation)
}
