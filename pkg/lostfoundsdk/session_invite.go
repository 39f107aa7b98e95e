package lostfoundsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateInvite invites email to become an admin. Any invite still pending
// for the same address is revoked.
// Requires: admin role
func (s *Session) CreateInvite(ctx context.Context, email string) (*InviteResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/api/admin/invites", CreateInviteRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var inviteResp InviteResponse
	if err := decodeJSON(resp, &inviteResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &inviteResp, nil
}

// ListInvites returns the most recent invites, newest first.
// Requires: admin role
func (s *Session) ListInvites(ctx context.Context) (*InviteListResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/admin/invites", nil, nil)
	if err != nil {
		return nil, err
	}

	var list InviteListResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}

	return &list, nil
}

// RevokeInvite revokes a pending invite.
// Requires: admin role
func (s *Session) RevokeInvite(ctx context.Context, id string) (*InviteResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/api/admin/invites/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var inviteResp InviteResponse
	if err := decodeJSON(resp, &inviteResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &inviteResp, nil
}

// ResendInvite issues a fresh token and expiry for an invite and mails it
// again. The previous token stops working.
// Requires: admin role
func (s *Session) ResendInvite(ctx context.Context, id string) (*InviteResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/admin/invites/"+url.PathEscape(id)+"/resend", nil, nil)
	if err != nil {
		return nil, err
	}

	var inviteResp InviteResponse
	if err := decodeJSON(resp, &inviteResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &inviteResp, nil
}
