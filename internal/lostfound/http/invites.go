package http

import (
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
)

type InvitesHandler struct {
	InviteService *service.InviteService
	Cookie        CookieConfig
}

// HandleCreate godoc
//
//	@Summary		Invite an admin
//	@Description	Create a pending admin invite and mail its accept link. Any invite still pending for the same email is revoked.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lostfoundsdk.CreateInviteRequest	true	"Invitee"
//	@Success		201		{object}	lostfoundsdk.InviteResponse
//	@Failure		400		{object}	lostfoundsdk.MessageResponse	"missing or malformed email"
//	@Failure		401		{object}	lostfoundsdk.MessageResponse
//	@Failure		403		{object}	lostfoundsdk.MessageResponse	"not an admin"
//	@Failure		409		{object}	lostfoundsdk.MessageResponse	"user is already an admin"
//	@Security		BearerAuth
//	@Router			/api/admin/invites [post].
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req lostfoundsdk.CreateInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	issued, err := h.InviteService.Create(r.Context(), req.Email, httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "create invite")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, lostfoundsdk.InviteResponse{
		Success:   true,
		Invite:    toInvite(issued.Invite),
		AcceptURL: issued.AcceptURL,
	})
}

// HandleList godoc
//
//	@Summary		List invites
//	@Description	The 200 most recent invites, newest first.
//	@Tags			Invites
//	@Produce		json
//	@Success		200	{object}	lostfoundsdk.InviteListResponse
//	@Failure		401	{object}	lostfoundsdk.MessageResponse
//	@Failure		403	{object}	lostfoundsdk.MessageResponse
//	@Security		BearerAuth
//	@Router			/api/admin/invites [get].
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InviteService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list invites")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.InviteListResponse{Success: true, Invites: toInvites(invites)})
}

// HandleRevoke godoc
//
//	@Summary	Revoke an invite
//	@Tags		Invites
//	@Produce	json
//	@Param		id	path		string	true	"Invite ID"
//	@Success	200	{object}	lostfoundsdk.InviteResponse
//	@Failure	400	{object}	lostfoundsdk.MessageResponse	"invite is not pending"
//	@Failure	404	{object}	lostfoundsdk.MessageResponse
//	@Security	BearerAuth
//	@Router		/api/admin/invites/{id} [delete].
func (h *InvitesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InviteService.Revoke(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "revoke invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.InviteResponse{Success: true, Invite: toInvite(inv)})
}

// HandleResend godoc
//
//	@Summary		Resend an invite
//	@Description	Issue a fresh token and expiry, set the invite back to pending and mail it again.
//	@Tags			Invites
//	@Produce		json
//	@Param			id	path		string	true	"Invite ID"
//	@Success		200	{object}	lostfoundsdk.InviteResponse
//	@Failure		404	{object}	lostfoundsdk.MessageResponse
//	@Security		BearerAuth
//	@Router			/api/admin/invites/{id}/resend [post].
func (h *InvitesHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	issued, err := h.InviteService.Resend(r.Context(), r.PathValue("id"), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "resend invite")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.InviteResponse{
		Success:   true,
		Invite:    toInvite(issued.Invite),
		AcceptURL: issued.AcceptURL,
	})
}

// HandleAccept godoc
//
//	@Summary		Accept an invite
//	@Description	Redeem an invite token. An existing account for the invited email is promoted to admin; otherwise name and password are required and a new admin account is created. Starts a session for the admin.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lostfoundsdk.AcceptInviteRequest	true	"Token and, for new accounts, name and password"
//	@Success		200		{object}	lostfoundsdk.UserResponse
//	@Failure		400		{object}	lostfoundsdk.MessageResponse	"unknown, expired or already used token"
//	@Failure		429		{object}	lostfoundsdk.MessageResponse	"rate limited"
//	@Router			/api/admin/invites/accept [post].
func (h *InvitesHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req lostfoundsdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := h.InviteService.Accept(r.Context(), req.Token, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "accept invite")
		return
	}

	h.Cookie.set(w, res.Session)
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.UserResponse{
		Success: true,
		Message: "Invitation accepted",
		User:    toUser(res.User),
	})
}
