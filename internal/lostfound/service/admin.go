package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Post type sets the admin listings are restricted to.
var (
	AllPostTypes   = domain.AllPostTypes
	LostPostTypes  = []domain.PostType{domain.PostTypeLostPerson, domain.PostTypeLostItem}
	FoundPostTypes = []domain.PostType{domain.PostTypeFoundPerson, domain.PostTypeFoundItem}
	ItemPostTypes  = []domain.PostType{domain.PostTypeLostItem, domain.PostTypeFoundItem}
)

// ListParams are the raw query parameters of an admin listing.
type ListParams struct {
	Q      string
	Status string
	Type   string // comma separated override
	Page   string
	Limit  string
}

// UserPage is one page of users.
type UserPage struct {
	Page       int
	Total      int
	TotalPages int
	Users      []domain.User
}

// PostPage is one page of posts.
type PostPage struct {
	Page       int
	Total      int
	TotalPages int
	Posts      []domain.PostWithAuthor
}

// ParsePage reads page and limit. page defaults to 1 and is at least 1;
// limit defaults to 20 and is clamped to [1, 100]. page is capped so the
// offset cannot overflow; a capped page lies past every row.
func ParsePage(page, limit string) domain.Page {
	p := domain.Page{Number: 1, Limit: DefaultPageLimit}

	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil {
		p.Limit = min(max(n, 1), MaxPageLimit)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n > 1 {
		p.Number = min(n, domain.MaxPageNumber(p.Limit))
	}
	return p
}

// BuildPostQuery turns listing parameters into a post query over allowed.
//
// A non-empty type override replaces allowed outright, so an endpoint's
// default set only applies when no type is given. q is matched
// case-insensitively against title, description, person name, item name
// and category. A status outside open/closed/resolved is ignored.
func BuildPostQuery(allowed []domain.PostType, p ListParams) domain.PostQuery {
	q := domain.PostQuery{
		Types:  allowed,
		Search: strings.TrimSpace(p.Q),
		Page:   ParsePage(p.Page, p.Limit),
	}

	if override := splitTypes(p.Type); len(override) > 0 {
		q.Types = make([]domain.PostType, 0, len(override))
		for _, t := range override {
			if !containsType(q.Types, t) {
				q.Types = append(q.Types, t)
			}
		}
	}

	if s := domain.PostStatus(strings.TrimSpace(p.Status)); s.Valid() {
		q.Status = s
	}
	return q
}

func splitTypes(raw string) []domain.PostType {
	var out []domain.PostType
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, domain.PostType(t))
		}
	}
	return out
}

func containsType(set []domain.PostType, t domain.PostType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

// AdminService backs the admin dashboard listings and charts.
type AdminService struct {
	Store store.Store
	Media MediaStore // optional; images of deleted users are removed when set
	Now   func() time.Time
}

func (s *AdminService) ListUsers(ctx context.Context, p ListParams) (UserPage, error) {
	page := ParsePage(p.Page, p.Limit)
	users, total, err := s.Store.Users().ListUsers(ctx, domain.UserQuery{
		Search: strings.TrimSpace(p.Q),
		Page:   page,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", slog.Any("error", err))
		return UserPage{}, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return UserPage{Page: page.Number, Total: total, TotalPages: page.TotalPages(total), Users: users}, nil
}

// ListPosts lists posts restricted to allowed.
func (s *AdminService) ListPosts(ctx context.Context, allowed []domain.PostType, p ListParams) (PostPage, error) {
	q := BuildPostQuery(allowed, p)
	posts, total, err := s.Store.Posts().ListPosts(ctx, q)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list posts", slog.Any("error", err))
		return PostPage{}, err
	}
	return PostPage{Page: q.Page.Number, Total: total, TotalPages: q.Page.TotalPages(total), Posts: posts}, nil
}

// WeeklyStats counts lost and found posts for each of the last seven UTC
// days, today included, oldest first.
func (s *AdminService) WeeklyStats(ctx context.Context) ([]domain.Bucket, error) {
	now := clock(s.Now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -6)

	buckets := make([]domain.Bucket, 7)
	for i := range buckets {
		d := start.AddDate(0, 0, i)
		buckets[i] = domain.Bucket{Key: d.Format(time.DateOnly), Label: d.Format("Mon")}
	}

	counts, err := s.Store.Posts().CountPostsByDay(ctx, start)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to count posts by day", slog.Any("error", err))
		return nil, err
	}
	return fillBuckets(buckets, counts), nil
}

// MonthlyStats counts lost and found posts for each of the last twelve UTC
// months, the current one included, oldest first.
func (s *AdminService) MonthlyStats(ctx context.Context) ([]domain.Bucket, error) {
	now := clock(s.Now)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	buckets := make([]domain.Bucket, 12)
	for i := range buckets {
		m := start.AddDate(0, i, 0)
		buckets[i] = domain.Bucket{Key: m.Format("2006-01"), Label: m.Format("Jan")}
	}

	counts, err := s.Store.Posts().CountPostsByMonth(ctx, start)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to count posts by month", slog.Any("error", err))
		return nil, err
	}
	return fillBuckets(buckets, counts), nil
}

// fillBuckets adds counts into the matching buckets. Rows outside the window
// are dropped.
func fillBuckets(buckets []domain.Bucket, counts []domain.TypeCount) []domain.Bucket {
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}
	for _, c := range counts {
		i, ok := index[c.Key]
		if !ok || !c.Type.Valid() {
			continue
		}
		if c.Type.IsLost() {
			buckets[i].Lost += c.Count
		} else {
			buckets[i].Found += c.Count
		}
	}
	return buckets
}

// DeleteUser removes a user and their posts. Admins cannot delete
// themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	log := slogx.FromContext(ctx)

	if userID == actorID {
		return ErrCannotDeleteSelf
	}

	posts, _, err := s.Store.Posts().ListPosts(ctx, domain.PostQuery{OwnerID: userID})
	if err != nil {
		log.Error("failed to list posts of user", slog.String("user_id", userID), slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to delete user", slog.String("user_id", userID), slog.Any("error", err))
		return err
	}

	if s.Media != nil {
		for _, p := range posts {
			for _, img := range p.Images {
				if err := s.Media.Remove(img.URL); err != nil {
					log.Warn("failed to remove upload of deleted user", slog.String("url", img.URL), slog.Any("error", err))
				}
			}
		}
	}

	log.Info("user deleted",
		slog.String("user_id", userID),
		slog.String("deleted_by", actorID),
		slog.Int("posts", len(posts)),
	)
	return nil
}
