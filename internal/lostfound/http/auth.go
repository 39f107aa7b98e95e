package http

import (
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Cookie      CookieConfig
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Create a regular account and start a session. The session token is set as the "token" cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lostfoundsdk.SignupRequest	true	"Account details"
//	@Success		201		{object}	lostfoundsdk.UserResponse
//	@Failure		400		{object}	lostfoundsdk.MessageResponse	"missing fields or malformed email"
//	@Failure		409		{object}	lostfoundsdk.MessageResponse	"email already registered"
//	@Router			/api/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req lostfoundsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := h.AuthService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "signup")
		return
	}

	h.Cookie.set(w, res.Session)
	httpx.WriteJSON(w, http.StatusCreated, lostfoundsdk.UserResponse{
		Success: true,
		Message: "User created successfully",
		User:    toUser(res.User),
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Check email and password and start a session. The session token is set as the "token" cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lostfoundsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	lostfoundsdk.UserResponse
//	@Failure		400		{object}	lostfoundsdk.MessageResponse	"invalid credentials"
//	@Failure		429		{object}	lostfoundsdk.MessageResponse	"rate limited"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req lostfoundsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}

	h.Cookie.set(w, res.Session)
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.UserResponse{
		Success: true,
		Message: "Logged in successfully",
		User:    toUser(res.User),
	})
}

// HandleLogout godoc
//
//	@Summary	Log out
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	lostfoundsdk.MessageResponse
//	@Router		/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookie.clear(w)
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.MessageResponse{Success: true, Message: "Logged out successfully"})
}

// HandleCheckAuth godoc
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	lostfoundsdk.UserResponse
//	@Failure	401	{object}	lostfoundsdk.MessageResponse
//	@Failure	404	{object}	lostfoundsdk.MessageResponse	"user no longer exists"
//	@Security	BearerAuth
//	@Router		/api/auth/check-auth [get].
func (h *AuthHandler) HandleCheckAuth(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.CurrentUser(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "check auth")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.UserResponse{Success: true, User: toUser(u)})
}
