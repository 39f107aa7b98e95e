package http

import (
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
)

type AdminHandler struct {
	AdminService *service.AdminService
}

func listParams(r *http.Request) service.ListParams {
	q := r.URL.Query()
	return service.ListParams{
		Q:      q.Get("q"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Page:   q.Get("page"),
		Limit:  q.Get("limit"),
	}
}

// HandleListUsers godoc
//
//	@Summary	List users
//	@Tags		Admin
//	@Produce	json
//	@Param		q		query		string	false	"Case-insensitive match on name or email"
//	@Param		page	query		int		false	"Page number, default 1"
//	@Param		limit	query		int		false	"Page size, default 20, max 100"
//	@Success	200		{object}	lostfoundsdk.UserListResponse
//	@Failure	401		{object}	lostfoundsdk.MessageResponse
//	@Failure	403		{object}	lostfoundsdk.MessageResponse
//	@Security	BearerAuth
//	@Router		/api/admin/users [get].
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.AdminService.ListUsers(r.Context(), listParams(r))
	if err != nil {
		writeServiceError(w, r, err, "list users")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.UserListResponse{
		Success:    true,
		Page:       page.Page,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Users:      toUsers(page.Users),
	})
}

// HandleDeleteUser godoc
//
//	@Summary		Delete a user
//	@Description	Remove a user together with their posts and uploaded images. Admins cannot delete themselves.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	lostfoundsdk.MessageResponse
//	@Failure		400	{object}	lostfoundsdk.MessageResponse	"attempt to delete own account"
//	@Failure		404	{object}	lostfoundsdk.MessageResponse
//	@Security		BearerAuth
//	@Router			/api/admin/users/{id} [delete].
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.AdminService.DeleteUser(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "delete user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.MessageResponse{Success: true, Message: "User deleted"})
}

// HandleListPosts godoc
//
//	@Summary	List all posts
//	@Tags		Admin
//	@Produce	json
//	@Param		q		query		string	false	"Case-insensitive match on title, description, person name, item name or category"
//	@Param		status	query		string	false	"open, closed or resolved"
//	@Param		type	query		string	false	"Comma separated post types"
//	@Param		page	query		int		false	"Page number, default 1"
//	@Param		limit	query		int		false	"Page size, default 20, max 100"
//	@Success	200		{object}	lostfoundsdk.PostListResponse
//	@Security	BearerAuth
//	@Router		/api/admin/posts [get].
func (h *AdminHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, service.AllPostTypes)
}

// HandleLostReports godoc
//
//	@Summary	List lost reports
//	@Tags		Admin
//	@Produce	json
//	@Param		q		query		string	false	"Search"
//	@Param		status	query		string	false	"open, closed or resolved"
//	@Param		type	query		string	false	"Comma separated post types, narrowed to lost_person and lost_item"
//	@Param		page	query		int		false	"Page number"
//	@Param		limit	query		int		false	"Page size"
//	@Success	200		{object}	lostfoundsdk.PostListResponse
//	@Security	BearerAuth
//	@Router		/api/admin/reports/lost [get].
func (h *AdminHandler) HandleLostReports(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, service.LostPostTypes)
}

// HandleFoundReports godoc
//
//	@Summary	List found reports
//	@Tags		Admin
//	@Produce	json
//	@Param		q		query		string	false	"Search"
//	@Param		status	query		string	false	"open, closed or resolved"
//	@Param		type	query		string	false	"Comma separated post types, narrowed to found_person and found_item"
//	@Param		page	query		int		false	"Page number"
//	@Param		limit	query		int		false	"Page size"
//	@Success	200		{object}	lostfoundsdk.PostListResponse
//	@Security	BearerAuth
//	@Router		/api/admin/reports/found [get].
func (h *AdminHandler) HandleFoundReports(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, service.FoundPostTypes)
}

// HandleItems godoc
//
//	@Summary	List item reports
//	@Tags		Admin
//	@Produce	json
//	@Param		q		query		string	false	"Search"
//	@Param		status	query		string	false	"open, closed or resolved"
//	@Param		type	query		string	false	"Comma separated post types, narrowed to lost_item and found_item"
//	@Param		page	query		int		false	"Page number"
//	@Param		limit	query		int		false	"Page size"
//	@Success	200		{object}	lostfoundsdk.PostListResponse
//	@Security	BearerAuth
//	@Router		/api/admin/items [get].
func (h *AdminHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, service.ItemPostTypes)
}

func (h *AdminHandler) listPosts(w http.ResponseWriter, r *http.Request, allowed []domain.PostType) {
	page, err := h.AdminService.ListPosts(r.Context(), allowed, listParams(r))
	if err != nil {
		writeServiceError(w, r, err, "list posts")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.PostListResponse{
		Success:    true,
		Page:       page.Page,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Posts:      toPosts(page.Posts, true),
	})
}

// HandleWeeklyStats godoc
//
//	@Summary		Weekly chart
//	@Description	Lost and found posts per UTC day for the last seven days, today included, oldest first. Days without posts are zero.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	lostfoundsdk.WeeklyStatsResponse
//	@Security		BearerAuth
//	@Router			/api/admin/stats/weekly [get].
func (h *AdminHandler) HandleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.AdminService.WeeklyStats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "weekly stats")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.WeeklyStatsResponse{Success: true, Data: toWeekly(buckets)})
}

// HandleMonthlyStats godoc
//
//	@Summary		Monthly chart
//	@Description	Lost and found posts per UTC month for the last twelve months, the current one included, oldest first.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	lostfoundsdk.MonthlyStatsResponse
//	@Security		BearerAuth
//	@Router			/api/admin/stats/monthly [get].
func (h *AdminHandler) HandleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.AdminService.MonthlyStats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "monthly stats")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.MonthlyStatsResponse{Success: true, Data: toMonthly(buckets)})
}
