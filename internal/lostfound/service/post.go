package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/media"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// MaxImagesPerField caps personImages and itemImages.
const MaxImagesPerField = 5

// MediaStore persists uploaded images.
type MediaStore interface {
	Save(ctx context.Context, group media.Group, filename, contentType string, r io.Reader) (string, error)
	Remove(url string) error
}

// Upload is one file from a report submission.
type Upload struct {
	Field       string // personImages, itemImages or profileImage
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Reporter identifies whoever files a report without being signed in.
type Reporter struct {
	Name     string
	Email    string
	Password string
}

// NewPost is a report submission. Location is either a JSON object or a
// bare address.
type NewPost struct {
	ActorID  string // signed-in user; Reporter is ignored when set
	Reporter Reporter

	Post     domain.Post
	Location string
	Uploads  []Upload
}

// CreatedPost is the outcome of PostService.Create.
type CreatedPost struct {
	Post           domain.Post
	User           domain.User
	Session        Session
	UserRegistered bool
}

// PostService handles lost and found reports.
type PostService struct {
	Store    store.Store
	Media    MediaStore
	Hasher   *cryptox.PasswordHasher
	Sessions Sessions
	Now      func() time.Time
}

// Create files a report. An anonymous reporter is registered as a regular
// user when no account exists for their email; an existing account must
// present the right password.
func (s *PostService) Create(ctx context.Context, in NewPost) (CreatedPost, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	// 1. Validate the report before touching storage.
	p := in.Post
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	if err := validatePost(p); err != nil {
		return CreatedPost{}, err
	}
	if err := checkUploadCounts(in.Uploads); err != nil {
		return CreatedPost{}, err
	}
	if in.Location != "" {
		p.Location = ParseLocation(in.Location)
	}
	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	p.Status = domain.PostStatusOpen
	p.IsPublic = true

	// 2. Resolve who is filing it.
	user, registered, err := s.resolveReporter(ctx, in, now)
	if err != nil {
		return CreatedPost{}, err
	}

	// 3. Store images. They are removed again if the post cannot be written.
	images, err := s.saveUploads(ctx, p, in.Uploads, now)
	if err != nil {
		return CreatedPost{}, err
	}

	p.ID = idx.NewAt(now).String()
	p.UserID = user.ID
	p.Images = images
	p.CreatedAt = now
	p.UpdatedAt = now

	// 4. Persist the reporter (when new) and the post together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if registered {
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				return err
			}
		}
		return tx.Posts().CreatePost(ctx, p)
	})
	if err != nil {
		s.removeImages(ctx, images)
		if errors.Is(err, store.ErrAlreadyExists) {
			return CreatedPost{}, ErrEmailTaken
		}
		log.Error("failed to create post", slog.Any("error", err))
		return CreatedPost{}, err
	}

	log.Info("post created",
		slog.String("post_id", p.ID),
		slog.String("user_id", user.ID),
		slog.String("type", string(p.Type)),
		slog.Int("images", len(images)),
		slog.Bool("user_registered", registered),
	)

	out := CreatedPost{Post: p, User: user, UserRegistered: registered}
	if in.ActorID == "" {
		sess, err := s.Sessions.Issue(ctx, user)
		if err != nil {
			return CreatedPost{}, err
		}
		out.Session = sess
	}
	out.User.PasswordHash = ""
	return out, nil
}

func (s *PostService) resolveReporter(ctx context.Context, in NewPost, now time.Time) (domain.User, bool, error) {
	log := slogx.FromContext(ctx)

	if in.ActorID != "" {
		u, err := s.Store.Users().GetUserByID(ctx, in.ActorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.User{}, false, ErrSessionUnknownUser
			}
			log.Error("failed to fetch user", slog.Any("error", err))
			return domain.User{}, false, err
		}
		return u, false, nil
	}

	r := in.Reporter
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return domain.User{}, false, validationf("Email and password are required")
	}
	email, err := normalizeEmail(r.Email)
	if err != nil {
		return domain.User{}, false, err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.Hasher.Verify(r.Password, u.PasswordHash); err != nil {
			if errors.Is(err, cryptox.ErrPasswordMismatch) {
				log.Warn("report filed for existing account with wrong password", slog.String("user_id", u.ID))
				return domain.User{}, false, ErrInvalidCredentials
			}
			return domain.User{}, false, err
		}
		return u, false, nil
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, false, err
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		return domain.User{}, false, validationf("Name is required")
	}
	hash, err := s.Hasher.Hash(r.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, false, err
	}
	return domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, true, nil
}

func (s *PostService) saveUploads(ctx context.Context, p domain.Post, uploads []Upload, now time.Time) ([]domain.Image, error) {
	var images []domain.Image
	for _, up := range uploads {
		url, err := s.saveUpload(ctx, p.Type, up)
		if err != nil {
			s.removeImages(ctx, images)
			if errors.Is(err, media.ErrNotImage) || errors.Is(err, media.ErrTooLarge) {
				return nil, validationf("%s", err.Error())
			}
			slogx.FromContext(ctx).Error("failed to store upload", slog.Any("error", err))
			return nil, err
		}
		images = append(images, domain.Image{URL: url, Caption: imageCaption(p, up.Field), UploadedAt: now})
	}
	return images, nil
}

func (s *PostService) saveUpload(ctx context.Context, t domain.PostType, up Upload) (string, error) {
	f, err := up.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.Media.Save(ctx, media.GroupFor(up.Field, t), up.Filename, up.ContentType, f)
}

func (s *PostService) removeImages(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if err := s.Media.Remove(img.URL); err != nil {
			slogx.FromContext(ctx).Warn("failed to remove orphaned upload", slog.String("url", img.URL), slog.Any("error", err))
		}
	}
}

func imageCaption(p domain.Post, field string) string {
	switch field {
	case "profileImage":
		return "Profile image"
	case "personImages":
		if p.Title != "" {
			return p.Title
		}
		return "Person image"
	default:
		if p.Title != "" {
			return p.Title
		}
		return "Item image"
	}
}

func checkUploadCounts(uploads []Upload) error {
	counts := make(map[string]int)
	for _, up := range uploads {
		counts[up.Field]++
	}
	for field, n := range counts {
		switch field {
		case "personImages", "itemImages":
			if n > MaxImagesPerField {
				return validationf("At most %d %s allowed", MaxImagesPerField, field)
			}
		case "profileImage":
			if n > 1 {
				return validationf("Only one profileImage allowed")
			}
		default:
			return validationf("Unexpected file field %s", field)
		}
	}
	return nil
}

func validatePost(p domain.Post) error {
	switch {
	case !p.Type.Valid():
		return validationf("Invalid post type")
	case p.Title == "":
		return validationf("Title is required")
	case p.Description == "":
		return validationf("Description is required")
	case p.Gender != "" && !p.Gender.Valid():
		return validationf("Invalid gender")
	case p.Priority != "" && !p.Priority.Valid():
		return validationf("Invalid priority")
	case p.Age != nil && *p.Age < 0:
		return validationf("Age must not be negative")
	case p.RewardAmount != nil && *p.RewardAmount < 0:
		return validationf("Reward amount must not be negative")
	}
	return nil
}

// ParseLocation reads a JSON location object, falling back to treating raw
// as a free-form address.
func ParseLocation(raw string) domain.Location {
	var v struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Address   string   `json:"address"`
		City      string   `json:"city"`
		Region    string   `json:"region"`
		Country   string   `json:"country"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.Location{Address: strings.TrimSpace(raw)}
	}
	return domain.Location{
		Latitude:  v.Latitude,
		Longitude: v.Longitude,
		Address:   v.Address,
		City:      v.City,
		Region:    v.Region,
		Country:   v.Country,
	}
}

// ListPublic returns every public post, newest first.
func (s *PostService) ListPublic(ctx context.Context) ([]domain.PostWithAuthor, error) {
	posts, _, err := s.Store.Posts().ListPosts(ctx, domain.PostQuery{PublicOnly: true})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list posts", slog.Any("error", err))
		return nil, err
	}
	return posts, nil
}

// GetPublic returns one public post.
func (s *PostService) GetPublic(ctx context.Context, id string) (domain.PostWithAuthor, error) {
	p, err := s.Store.Posts().GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PostWithAuthor{}, ErrPostNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch post", slog.String("post_id", id), slog.Any("error", err))
		return domain.PostWithAuthor{}, err
	}
	if !p.IsPublic {
		return domain.PostWithAuthor{}, ErrPostNotFound
	}
	return p, nil
}

// ListMine returns the posts filed by userID, newest first.
func (s *PostService) ListMine(ctx context.Context, userID string) ([]domain.PostWithAuthor, error) {
	posts, _, err := s.Store.Posts().ListPosts(ctx, domain.PostQuery{OwnerID: userID})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list posts", slog.String("user_id", userID), slog.Any("error", err))
		return nil, err
	}
	return posts, nil
}

// UpdateStatus changes the status of a post owned by userID.
func (s *PostService) UpdateStatus(ctx context.Context, userID, postID string, status domain.PostStatus) (domain.PostWithAuthor, error) {
	log := slogx.FromContext(ctx)

	if !status.Valid() {
		return domain.PostWithAuthor{}, ErrInvalidStatus
	}

	p, err := s.Store.Posts().GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PostWithAuthor{}, ErrPostNotFound
		}
		log.Error("failed to fetch post", slog.String("post_id", postID), slog.Any("error", err))
		return domain.PostWithAuthor{}, err
	}
	if p.UserID != userID {
		log.Warn("status change attempted by non-owner", slog.String("post_id", postID))
		return domain.PostWithAuthor{}, ErrNotPostOwner
	}

	now := clock(s.Now)
	if err := s.Store.Posts().UpdatePostStatus(ctx, postID, status, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PostWithAuthor{}, ErrPostNotFound
		}
		log.Error("failed to update post status", slog.String("post_id", postID), slog.Any("error", err))
		return domain.PostWithAuthor{}, err
	}

	p.Status = status
	p.UpdatedAt = now
	log.Info("post status updated", slog.String("post_id", postID), slog.String("status", string(status)))
	return p, nil
}

// Stats summarises public posts for the landing page.
func (s *PostService) Stats(ctx context.Context) (domain.PostStats, error) {
	now := clock(s.Now)
	stats, err := s.Store.Posts().Stats(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to compute post stats", slog.Any("error", err))
		return domain.PostStats{}, err
	}
	return stats, nil
}
