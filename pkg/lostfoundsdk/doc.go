/*
Package lostfoundsdk provides a client SDK for the lost-and-found API.

# SDKClient vs Session

The package is organized around two types:

  - SDKClient: public operations (health, public posts, signup, login,
    invite acceptance) and the entry points that create a Session
  - Session: operations that need a signed-in user

	client := lostfoundsdk.NewSDKClient("https://lostfound.example.com")

	session, user, err := client.Login(ctx, "admin@example.com", password)
	if err != nil {
		return err
	}

	invite, err := session.CreateInvite(ctx, "new.admin@example.com")
	fmt.Println(invite.AcceptURL)

Session tokens are not refreshed. Persist Session.Token() and rebuild the
session with SDKClient.NewSession to reuse it across runs.

# Invites

An admin invite moves from pending to exactly one of accepted, revoked or
expired. The invitee redeems it without being signed in:

	session, user, err := client.AcceptInvite(ctx, lostfoundsdk.AcceptInviteRequest{
		Token:    token,
		Name:     "Jane Doe",
		Password: "correct horse battery staple",
	})

Name and Password are only needed when no account exists for the invited
email; an existing account is promoted instead.

# Error Handling

Every non-2xx response is returned as an *APIError carrying the status
code and the server's message:

	_, err := session.RevokeInvite(ctx, id)
	if lostfoundsdk.IsStatus(err, http.StatusBadRequest) {
		// already accepted, revoked or expired
	}

# Thread Safety

SDKClient and Session are safe for concurrent use.
*/
package lostfoundsdk
