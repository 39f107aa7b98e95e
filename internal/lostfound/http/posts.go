package http

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
)

// multipartMemory is how much of a report form is buffered in memory before
// files spill to disk.
const multipartMemory = 8 << 20

type PostsHandler struct {
	PostService *service.PostService
	Cookie      CookieConfig

	// MaxUploadBytes caps a single file; the whole form may carry
	// 2*MaxImagesPerField+1 of them.
	MaxUploadBytes int64
}

// HandleCreate godoc
//
//	@Summary		File a report
//	@Description	Create a lost or found post from a multipart form. Anonymous reporters send name, email and password and are registered when no account exists for the email. Images go in personImages or itemImages (up to 5 each) and profileImage (one).
//	@Tags			Posts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			type			formData	string	true	"lost_person, found_person, lost_item or found_item"
//	@Param			title			formData	string	true	"Title"
//	@Param			description		formData	string	true	"Description"
//	@Param			name			formData	string	false	"Reporter name (new accounts)"
//	@Param			email			formData	string	false	"Reporter email (anonymous)"
//	@Param			password		formData	string	false	"Reporter password (anonymous)"
//	@Param			location		formData	string	false	"JSON location object or a bare address"
//	@Param			personImages	formData	file	false	"Person images"
//	@Param			itemImages		formData	file	false	"Item images"
//	@Param			profileImage	formData	file	false	"Profile image"
//	@Success		201				{object}	lostfoundsdk.CreatePostResponse
//	@Failure		400				{object}	lostfoundsdk.MessageResponse
//	@Failure		409				{object}	lostfoundsdk.MessageResponse
//	@Router			/api/posts/create [post].
func (h *PostsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	maxFile := h.MaxUploadBytes
	if maxFile <= 0 {
		maxFile = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFile*(2*service.MaxImagesPerField+1)+httpx.DefaultMaxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			httpx.WriteError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		if err := r.ParseForm(); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	post, err := postFromForm(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.PostService.Create(ctx, service.NewPost{
		ActorID: httpx.UserID(ctx),
		Reporter: service.Reporter{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		},
		Post:     post,
		Location: r.FormValue("location"),
		Uploads:  uploadsFromForm(r),
	})
	if err != nil {
		writeServiceError(w, r, err, "create post")
		return
	}

	if out.Session.Token != "" {
		h.Cookie.set(w, out.Session)
	}
	httpx.WriteJSON(w, http.StatusCreated, lostfoundsdk.CreatePostResponse{
		Success: true,
		Message: "Post created successfully",
		UserID:  out.User.ID,
		PostID:  out.Post.ID,
		Post:    toPost(out.Post),
		User:    toUser(out.User),
	})
}

func postFromForm(r *http.Request) (domain.Post, error) {
	p := domain.Post{
		Type:         domain.PostType(r.FormValue("type")),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		PersonName:   strings.TrimSpace(r.FormValue("personName")),
		Gender:       domain.Gender(r.FormValue("gender")),
		ItemName:     strings.TrimSpace(r.FormValue("itemName")),
		Category:     strings.TrimSpace(r.FormValue("category")),
		Brand:        strings.TrimSpace(r.FormValue("brand")),
		Color:        strings.TrimSpace(r.FormValue("color")),
		ContactName:  strings.TrimSpace(r.FormValue("contactName")),
		ContactPhone: strings.TrimSpace(r.FormValue("contactPhone")),
		ContactEmail: strings.TrimSpace(r.FormValue("contactEmail")),
		Priority:     domain.Priority(r.FormValue("priority")),
	}

	if v := strings.TrimSpace(r.FormValue("age")); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil || age < 0 {
			return domain.Post{}, errors.New("Invalid age")
		}
		p.Age = &age
	}
	if v := strings.TrimSpace(r.FormValue("rewardAmount")); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil || amount < 0 {
			return domain.Post{}, errors.New("Invalid reward amount")
		}
		p.RewardAmount = &amount
	}
	if v := strings.TrimSpace(r.FormValue("lastSeenDate")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return domain.Post{}, errors.New("Invalid last seen date")
		}
		p.LastSeenDate = &t
	}
	return p, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates as sent by HTML date
// inputs.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, v)
}

func uploadsFromForm(r *http.Request) []service.Upload {
	if r.MultipartForm == nil {
		return nil
	}

	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var uploads []service.Upload
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			uploads = append(uploads, service.Upload{
				Field:       field,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Open:        func() (io.ReadCloser, error) { return fh.Open() },
			})
		}
	}
	return uploads
}

// HandleList godoc
//
//	@Summary	List public posts
//	@Tags		Posts
//	@Produce	json
//	@Success	200	{object}	lostfoundsdk.PostsResponse
//	@Router		/api/posts [get].
func (h *PostsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListPublic(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list posts")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.PostsResponse{Success: true, Count: len(posts), Posts: toPosts(posts, false)})
}

// HandleGet godoc
//
//	@Summary	Get a public post
//	@Tags		Posts
//	@Produce	json
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	lostfoundsdk.PostResponse
//	@Failure	404	{object}	lostfoundsdk.MessageResponse
//	@Router		/api/posts/{id} [get].
func (h *PostsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPublic(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "get post")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.PostResponse{Success: true, Post: toPostWithAuthor(post, false)})
}

// HandleMine godoc
//
//	@Summary	List my posts
//	@Tags		Posts
//	@Produce	json
//	@Success	200	{object}	lostfoundsdk.PostsResponse
//	@Failure	401	{object}	lostfoundsdk.MessageResponse
//	@Security	BearerAuth
//	@Router		/api/posts/mine/me [get].
func (h *PostsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListMine(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "list own posts")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.PostsResponse{Success: true, Count: len(posts), Posts: toPosts(posts, false)})
}

// HandleUpdateStatus godoc
//
//	@Summary	Update post status
//	@Tags		Posts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string									true	"Post ID"
//	@Param		request	body		lostfoundsdk.UpdatePostStatusRequest	true	"open, closed or resolved"
//	@Success	200		{object}	lostfoundsdk.PostResponse
//	@Failure	400		{object}	lostfoundsdk.MessageResponse	"invalid status"
//	@Failure	403		{object}	lostfoundsdk.MessageResponse	"not the owner"
//	@Failure	404		{object}	lostfoundsdk.MessageResponse
//	@Security	BearerAuth
//	@Router		/api/posts/{id}/status [patch].
func (h *PostsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req lostfoundsdk.UpdatePostStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ctx := r.Context()
	post, err := h.PostService.UpdateStatus(ctx, httpx.UserID(ctx), r.PathValue("id"), domain.PostStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err, "update post status")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.PostResponse{Success: true, Post: toPostWithAuthor(post, false)})
}

// HandleStats godoc
//
//	@Summary	Public statistics
//	@Tags		Posts
//	@Produce	json
//	@Success	200	{object}	lostfoundsdk.PublicStatsResponse
//	@Router		/api/posts/stats/public [get].
func (h *PostsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.PostService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "post stats")
		return
	}

	byType := make(map[string]int, len(domain.AllPostTypes))
	for _, t := range domain.AllPostTypes {
		byType[string(t)] = stats.ByType[t]
	}
	httpx.WriteJSON(w, http.StatusOK, lostfoundsdk.PublicStatsResponse{
		Success:  true,
		Total:    stats.Total,
		Resolved: stats.Resolved,
		Open:     stats.Open,
		Last7d:   stats.Last7d,
		ByType:   byType,
	})
}
