package lostfoundsdk

import (
	"context"
	"errors"
	"net/http"
)

var errMissingCookie = errors.New("lostfound: response carried no session cookie")

// Signup registers a regular account and returns its session.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*Session, *UserResponse, error) {
	return c.authenticate(ctx, "/api/auth/signup", req, http.StatusCreated)
}

// Login authenticates with email and password.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, *UserResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", LoginRequest{Email: email, Password: password}, http.StatusOK)
}

// AcceptInvite redeems an admin invite token. Name and Password are only
// required when the invited email has no account yet. The returned session
// belongs to the new admin.
func (c *SDKClient) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (*Session, *UserResponse, error) {
	return c.authenticate(ctx, "/api/admin/invites/accept", req, http.StatusOK)
}

func (c *SDKClient) authenticate(ctx context.Context, path string, payload any, expected int) (*Session, *UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, nil, err
	}

	token := sessionCookie(resp)

	var user UserResponse
	if err := decodeJSON(resp, &user, expected); err != nil {
		return nil, nil, err
	}
	if token == "" {
		return nil, nil, errMissingCookie
	}

	return c.NewSession(token), &user, nil
}
