//go:build e2e

package lostfound_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
	"github.com/stretchr/testify/require"
)

// TestInviteAcceptCreatesAdmin walks the full invite flow:
// 1. Sign in as the bootstrap admin
// 2. Invite a new address
// 3. Accept the invite with a name and password
// 4. Use the returned session on an admin endpoint
// 5. Replaying the token fails
func TestInviteAcceptCreatesAdmin(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := lostfoundsdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	created, err := admin.CreateInvite(t.Context(), "new-admin@example.com")
	require.NoError(t, err)
	require.Equal(t, "pending", created.Invite.Status)
	require.Contains(t, created.AcceptURL, clientURL+"/accept-admin?token=")

	token := tokenFromAcceptURL(t, created.AcceptURL)

	session, accepted, err := client.AcceptInvite(t.Context(), lostfoundsdk.AcceptInviteRequest{
		Token:    token,
		Name:     "New Admin",
		Password: "new-admin-password",
	})
	require.NoError(t, err)
	require.Equal(t, "admin", accepted.User.Role)
	require.Equal(t, "new-admin@example.com", accepted.User.Email)

	users, err := session.ListUsers(t.Context(), lostfoundsdk.ListQuery{Q: "new-admin"})
	require.NoError(t, err)
	require.Equal(t, 1, users.Total)

	_, _, err = client.AcceptInvite(t.Context(), lostfoundsdk.AcceptInviteRequest{Token: token})
	assertStatus(t, err, http.StatusBadRequest, "a used token must not be accepted twice")

	list, err := admin.ListInvites(t.Context())
	require.NoError(t, err)
	require.Len(t, list.Invites, 1)
	require.Equal(t, "accepted", list.Invites[0].Status)
	require.NotNil(t, list.Invites[0].AcceptedAt)
}

// TestInvitePromotesExistingUser verifies an invite for a registered user
// promotes the account without a new password.
func TestInvitePromotesExistingUser(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := lostfoundsdk.NewSDKClient(baseURL)

	_, signedUp, err := client.Signup(t.Context(), lostfoundsdk.SignupRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "jane-password",
	})
	require.NoError(t, err)
	require.Equal(t, "user", signedUp.User.Role)

	admin := loginAdmin(t, client)
	created, err := admin.CreateInvite(t.Context(), "jane@example.com")
	require.NoError(t, err)

	_, accepted, err := client.AcceptInvite(t.Context(), lostfoundsdk.AcceptInviteRequest{
		Token: tokenFromAcceptURL(t, created.AcceptURL),
	})
	require.NoError(t, err)
	require.Equal(t, signedUp.User.ID, accepted.User.ID)
	require.Equal(t, "admin", accepted.User.Role)

	// An admin cannot be invited again.
	_, err = admin.CreateInvite(t.Context(), "jane@example.com")
	assertStatus(t, err, http.StatusConflict, "inviting an admin")
}

// TestInviteRevokeAndResend covers revocation and link reissue.
func TestInviteRevokeAndResend(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := lostfoundsdk.NewSDKClient(baseURL)
	admin := loginAdmin(t, client)

	created, err := admin.CreateInvite(t.Context(), "revoke-me@example.com")
	require.NoError(t, err)
	oldToken := tokenFromAcceptURL(t, created.AcceptURL)

	resent, err := admin.ResendInvite(t.Context(), created.Invite.ID)
	require.NoError(t, err)
	newToken := tokenFromAcceptURL(t, resent.AcceptURL)
	require.NotEqual(t, oldToken, newToken, "resend must rotate the token")

	_, _, err = client.AcceptInvite(t.Context(), lostfoundsdk.AcceptInviteRequest{
		Token: oldToken, Name: "Nope", Password: "password",
	})
	assertStatus(t, err, http.StatusBadRequest, "superseded token")

	revoked, err := admin.RevokeInvite(t.Context(), resent.Invite.ID)
	require.NoError(t, err)
	require.Equal(t, "revoked", revoked.Invite.Status)

	_, err = admin.RevokeInvite(t.Context(), resent.Invite.ID)
	assertStatus(t, err, http.StatusBadRequest, "revoking twice")

	_, _, err = client.AcceptInvite(t.Context(), lostfoundsdk.AcceptInviteRequest{
		Token: newToken, Name: "Nope", Password: "password",
	})
	assertStatus(t, err, http.StatusBadRequest, "revoked token")

	_, err = admin.RevokeInvite(t.Context(), "does-not-exist")
	assertStatus(t, err, http.StatusNotFound, "unknown invite")
}

// TestInviteRequiresAdmin verifies regular users cannot manage invites.
func TestInviteRequiresAdmin(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := lostfoundsdk.NewSDKClient(baseURL)

	user, _, err := client.Signup(t.Context(), lostfoundsdk.SignupRequest{
		Name: "Bob", Email: "bob@example.com", Password: "bob-password",
	})
	require.NoError(t, err)

	_, err = user.CreateInvite(t.Context(), "someone@example.com")
	assertStatus(t, err, http.StatusForbidden, "regular user creating invite")

	_, err = client.NewSession("not-a-token").ListInvites(t.Context())
	assertStatus(t, err, http.StatusUnauthorized, "garbage session")
}
