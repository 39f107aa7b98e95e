package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store/drivers/sqlite"
	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s store.Store, name, email string, role domain.Role, at time.Time) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.NewAt(at).String(),
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func seedInvite(t *testing.T, s store.Store, email string, at time.Time) domain.Invite {
	t.Helper()
	inv := domain.Invite{
		ID:        idx.NewAt(at).String(),
		Email:     email,
		TokenHash: "hash-" + idx.New().String(),
		InvitedBy: "admin",
		Status:    domain.InviteStatusPending,
		ExpiresAt: at.Add(7 * 24 * time.Hour),
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, s.Invites().CreateInvite(context.Background(), inv))
	return inv
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := seedUser(t, s, "Alice", "alice@x.com", domain.RoleUser, t0)

	got, err := s.Users().GetUserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.RoleUser, got.Role)
	require.False(t, got.IsVerified)
	require.Nil(t, got.LastLogin)
	require.True(t, got.CreatedAt.Equal(t0))

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_PromoteAndLastLogin(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "Bob", "bob@x.com", domain.RoleUser, t0)

	require.NoError(t, s.Users().PromoteToAdmin(ctx, u.ID, t0.Add(time.Hour)))
	require.NoError(t, s.Users().UpdateLastLogin(ctx, u.ID, t0.Add(2*time.Hour)))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.True(t, got.IsVerified)
	require.NotNil(t, got.LastLogin)
	require.True(t, got.LastLogin.Equal(t0.Add(2*time.Hour)))

	require.ErrorIs(t, s.Users().PromoteToAdmin(ctx, "missing", t0), store.ErrNotFound)
}

func TestUsers_ListSearchAndPaging(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	seedUser(t, s, "Alice Smith", "alice@x.com", domain.RoleUser, t0)
	seedUser(t, s, "Bob", "bob@SMITH.io", domain.RoleUser, t0.Add(time.Minute))
	seedUser(t, s, "Carol 100%", "carol@x.com", domain.RoleAdmin, t0.Add(2*time.Minute))

	users, total, err := s.Users().ListUsers(ctx, domain.UserQuery{Search: "smith", Page: domain.Page{Number: 1, Limit: 20}})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "Bob", users[0].Name) // newest first

	// LIKE wildcards in the query are literal.
	users, total, err = s.Users().ListUsers(ctx, domain.UserQuery{Search: "0%"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Carol 100%", users[0].Name)

	_, total, err = s.Users().ListUsers(ctx, domain.UserQuery{Search: "_"})
	require.NoError(t, err)
	require.Equal(t, 0, total)

	users, total, err = s.Users().ListUsers(ctx, domain.UserQuery{Page: domain.Page{Number: 2, Limit: 2}})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, users, 1)
	require.Equal(t, "Alice Smith", users[0].Name)
}

func TestUsers_DeleteCascadesPosts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "Alice", "alice@x.com", domain.RoleUser, t0)
	p := seedPost(t, s, u.ID, domain.PostTypeLostItem, "Wallet", t0)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err := s.Posts().GetPostByID(ctx, p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestInvites_LookupAndList(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := seedInvite(t, s, "a@x.com", t0)
	second := seedInvite(t, s, "b@x.com", t0.Add(time.Minute))

	got, err := s.Invites().GetInviteByTokenHash(ctx, first.TokenHash)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, domain.InviteStatusPending, got.Status)
	require.Nil(t, got.AcceptedAt)
	require.True(t, got.ExpiresAt.Equal(first.ExpiresAt))

	_, err = s.Invites().GetInviteByTokenHash(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.Invites().ListInvites(ctx, 200)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)

	list, err = s.Invites().ListInvites(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	dup := first
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Invites().CreateInvite(ctx, dup), store.ErrAlreadyExists)
}

func TestInvites_ConditionalTransitions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	inv := seedInvite(t, s, "a@x.com", t0)

	require.NoError(t, s.Invites().AcceptInvite(ctx, inv.ID, t0.Add(time.Hour)))

	got, err := s.Invites().GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InviteStatusAccepted, got.Status)
	require.NotNil(t, got.AcceptedAt)
	require.True(t, got.AcceptedAt.Equal(t0.Add(time.Hour)))

	// Second acceptance and a revoke both lose the race.
	require.ErrorIs(t, s.Invites().AcceptInvite(ctx, inv.ID, t0), store.ErrStateChanged)
	require.ErrorIs(t,
		s.Invites().TransitionInvite(ctx, inv.ID, domain.InviteStatusPending, domain.InviteStatusRevoked, t0),
		store.ErrStateChanged)
	require.ErrorIs(t,
		s.Invites().TransitionInvite(ctx, "missing", domain.InviteStatusPending, domain.InviteStatusRevoked, t0),
		store.ErrNotFound)
}

func TestInvites_RevokePendingAndReissue(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := seedInvite(t, s, "a@x.com", t0)
	b := seedInvite(t, s, "a@x.com", t0.Add(time.Minute))
	other := seedInvite(t, s, "z@x.com", t0)

	n, err := s.Invites().RevokePendingInvites(ctx, "a@x.com", b.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, _ := s.Invites().GetInviteByID(ctx, a.ID)
	require.Equal(t, domain.InviteStatusRevoked, got.Status)
	got, _ = s.Invites().GetInviteByID(ctx, b.ID)
	require.Equal(t, domain.InviteStatusPending, got.Status)
	got, _ = s.Invites().GetInviteByID(ctx, other.ID)
	require.Equal(t, domain.InviteStatusPending, got.Status)

	newExpiry := t0.Add(30 * 24 * time.Hour)
	require.NoError(t, s.Invites().ReissueInvite(ctx, a.ID, "fresh-hash", newExpiry, t0.Add(2*time.Hour)))

	got, err = s.Invites().GetInviteByTokenHash(ctx, "fresh-hash")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, domain.InviteStatusPending, got.Status)
	require.True(t, got.ExpiresAt.Equal(newExpiry))

	_, err = s.Invites().GetInviteByTokenHash(ctx, a.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Invites().ReissueInvite(ctx, "missing", "h", newExpiry, t0), store.ErrNotFound)

	// Reissuing an accepted invite reopens it without the acceptance stamp.
	require.NoError(t, s.Invites().AcceptInvite(ctx, b.ID, t0.Add(3*time.Hour)))
	require.NoError(t, s.Invites().ReissueInvite(ctx, b.ID, "again", newExpiry, t0.Add(4*time.Hour)))
	got, err = s.Invites().GetInviteByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InviteStatusPending, got.Status)
	require.Nil(t, got.AcceptedAt)
}

func TestInvites_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	inv := seedInvite(t, s, "a@x.com", t0)

	// Exactly at expiry the invite survives.
	n, err := s.Invites().DeleteExpiredInvites(ctx, inv.ExpiresAt)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.Invites().DeleteExpiredInvites(ctx, inv.ExpiresAt.Add(time.Millisecond))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = s.Invites().GetInviteByID(ctx, inv.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		seedUser(t, tx, "Ghost", "ghost@x.com", domain.RoleUser, t0)
		return fmt.Errorf("boom")
	})
	require.EqualError(t, err, "boom")

	_, err = s.Users().GetUserByEmail(ctx, "ghost@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err, "nested transactions are rejected")
}
