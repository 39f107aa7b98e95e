package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, s store.Store, userID string, typ domain.PostType, title string, at time.Time) domain.Post {
	t.Helper()
	p := domain.Post{
		ID:          idx.NewAt(at).String(),
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Description: "description of " + title,
		Status:      domain.PostStatusOpen,
		Priority:    domain.PriorityMedium,
		IsPublic:    true,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	require.NoError(t, s.Posts().CreatePost(context.Background(), p))
	return p
}

func TestPosts_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "Alice", "alice@x.com", domain.RoleUser, t0)

	age := 9
	reward := 50.5
	lat := -33.86
	seen := t0.Add(-time.Hour)
	p := domain.Post{
		ID:           idx.New().String(),
		UserID:       u.ID,
		Type:         domain.PostTypeLostPerson,
		Title:        "Missing child",
		Description:  "Last seen at the park",
		PersonName:   "Sam",
		Age:          &age,
		Gender:       domain.GenderOther,
		ContactPhone: "0400 000 000",
		LastSeenDate: &seen,
		Images:       []domain.Image{{URL: "/uploads/posts/persons/2025/10/a.jpg", UploadedAt: t0}},
		Location:     domain.Location{Latitude: &lat, Address: "1 Park Rd", City: "Sydney"},
		Status:       domain.PostStatusOpen,
		Priority:     domain.PriorityHigh,
		RewardAmount: &reward,
		IsPublic:     true,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, s.Posts().CreatePost(ctx, p))

	got, err := s.Posts().GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Sam", got.PersonName)
	require.Equal(t, 9, *got.Age)
	require.Equal(t, 50.5, *got.RewardAmount)
	require.Equal(t, -33.86, *got.Location.Latitude)
	require.Nil(t, got.Location.Longitude)
	require.Equal(t, "Sydney", got.Location.City)
	require.Len(t, got.Images, 1)
	require.True(t, got.Images[0].UploadedAt.Equal(t0))
	require.True(t, got.LastSeenDate.Equal(seen))
	require.Equal(t, domain.UserSummary{ID: u.ID, Name: "Alice", Email: "alice@x.com", Role: domain.RoleUser}, got.Author)

	require.NoError(t, s.Posts().UpdatePostStatus(ctx, p.ID, domain.PostStatusResolved, t0.Add(time.Hour)))
	got, _ = s.Posts().GetPostByID(ctx, p.ID)
	require.Equal(t, domain.PostStatusResolved, got.Status)

	require.ErrorIs(t, s.Posts().UpdatePostStatus(ctx, "missing", domain.PostStatusClosed, t0), store.ErrNotFound)
}

func TestPosts_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "Alice", "alice@x.com", domain.RoleUser, t0)
	v := seedUser(t, s, "Vic", "vic@x.com", domain.RoleUser, t0)

	seedPost(t, s, u.ID, domain.PostTypeLostItem, "Black wallet", t0)
	seedPost(t, s, u.ID, domain.PostTypeFoundItem, "Blue umbrella", t0.Add(time.Minute))
	seedPost(t, s, v.ID, domain.PostTypeLostPerson, "Grandpa Joe", t0.Add(2*time.Minute))
	closed := seedPost(t, s, v.ID, domain.PostTypeFoundPerson, "Lost boy found", t0.Add(3*time.Minute))
	require.NoError(t, s.Posts().UpdatePostStatus(ctx, closed.ID, domain.PostStatusClosed, t0))

	tests := []struct {
		name string
		q    domain.PostQuery
		want []string
	}{
		{"everything newest first", domain.PostQuery{}, []string{"Lost boy found", "Grandpa Joe", "Blue umbrella", "Black wallet"}},
		{"lost only", domain.PostQuery{Types: []domain.PostType{domain.PostTypeLostItem, domain.PostTypeLostPerson}}, []string{"Grandpa Joe", "Black wallet"}},
		{"empty type set", domain.PostQuery{Types: []domain.PostType{}}, nil},
		{"search is case-insensitive", domain.PostQuery{Search: "BL"}, []string{"Blue umbrella", "Black wallet"}},
		{"search hits description", domain.PostQuery{Search: "description of grandpa"}, []string{"Grandpa Joe"}},
		{"status", domain.PostQuery{Status: domain.PostStatusClosed}, []string{"Lost boy found"}},
		{"owner", domain.PostQuery{OwnerID: u.ID}, []string{"Blue umbrella", "Black wallet"}},
		{"combined", domain.PostQuery{Types: []domain.PostType{domain.PostTypeFoundItem, domain.PostTypeFoundPerson}, Status: domain.PostStatusOpen}, []string{"Blue umbrella"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, total, err := s.Posts().ListPosts(ctx, tt.q)
			require.NoError(t, err)
			require.Equal(t, len(tt.want), total)

			var titles []string
			for _, p := range posts {
				titles = append(titles, p.Title)
			}
			require.Equal(t, tt.want, titles)
		})
	}
}

func TestPosts_Pagination(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "Alice", "alice@x.com", domain.RoleUser, t0)

	for i := range 45 {
		seedPost(t, s, u.ID, domain.PostTypeLostItem, "item", t0.Add(time.Duration(i)*time.Minute))
	}

	page := domain.Page{Number: 3, Limit: 20}
	posts, total, err := s.Posts().ListPosts(ctx, domain.PostQuery{Page: page})
	require.NoError(t, err)
	require.Equal(t, 45, total)
	require.Len(t, posts, 5)
	require.Equal(t, 3, page.TotalPages(total))
	require.True(t, posts[0].CreatedAt.Equal(t0.Add(4*time.Minute)))
}

func TestPosts_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "Alice", "alice@x.com", domain.RoleUser, t0)

	seedPost(t, s, u.ID, domain.PostTypeLostItem, "a", t0)
	seedPost(t, s, u.ID, domain.PostTypeLostItem, "b", t0.Add(time.Hour))
	seedPost(t, s, u.ID, domain.PostTypeFoundPerson, "c", t0.Add(-24*time.Hour))
	old := seedPost(t, s, u.ID, domain.PostTypeFoundItem, "d", t0.AddDate(0, -2, 0))
	require.NoError(t, s.Posts().UpdatePostStatus(ctx, old.ID, domain.PostStatusResolved, t0))

	days, err := s.Posts().CountPostsByDay(ctx, t0.AddDate(0, 0, -6).Truncate(24*time.Hour))
	require.NoError(t, err)
	require.ElementsMatch(t, []domain.TypeCount{
		{Key: "2025-10-13", Type: domain.PostTypeFoundPerson, Count: 1},
		{Key: "2025-10-14", Type: domain.PostTypeLostItem, Count: 2},
	}, days)

	months, err := s.Posts().CountPostsByMonth(ctx, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.ElementsMatch(t, []domain.TypeCount{
		{Key: "2025-08", Type: domain.PostTypeFoundItem, Count: 1},
		{Key: "2025-10", Type: domain.PostTypeFoundPerson, Count: 1},
		{Key: "2025-10", Type: domain.PostTypeLostItem, Count: 2},
	}, months)

	stats, err := s.Posts().Stats(ctx, t0.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 1, stats.Resolved)
	require.Equal(t, 3, stats.Open)
	require.Equal(t, 3, stats.Last7d)
	require.Equal(t, map[domain.PostType]int{
		domain.PostTypeLostPerson:  0,
		domain.PostTypeFoundPerson: 1,
		domain.PostTypeLostItem:    2,
		domain.PostTypeFoundItem:   1,
	}, stats.ByType)
}
