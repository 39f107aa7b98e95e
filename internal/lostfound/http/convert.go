package http

import (
	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
)

func toUser(u domain.User) lostfoundsdk.User {
	return lostfoundsdk.User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toUsers(us []domain.User) []lostfoundsdk.User {
	out := make([]lostfoundsdk.User, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

func toInvite(i domain.Invite) lostfoundsdk.Invite {
	return lostfoundsdk.Invite{
		ID:         i.ID,
		Email:      i.Email,
		InvitedBy:  i.InvitedBy,
		Status:     string(i.Status),
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func toInvites(is []domain.Invite) []lostfoundsdk.Invite {
	out := make([]lostfoundsdk.Invite, 0, len(is))
	for _, i := range is {
		out = append(out, toInvite(i))
	}
	return out
}

func toPost(p domain.Post) lostfoundsdk.Post {
	images := make([]lostfoundsdk.Image, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, lostfoundsdk.Image{URL: img.URL, Caption: img.Caption, UploadedAt: img.UploadedAt})
	}

	return lostfoundsdk.Post{
		ID:           p.ID,
		UserID:       p.UserID,
		Type:         string(p.Type),
		Title:        p.Title,
		Description:  p.Description,
		PersonName:   p.PersonName,
		Age:          p.Age,
		Gender:       string(p.Gender),
		ItemName:     p.ItemName,
		Category:     p.Category,
		Brand:        p.Brand,
		Color:        p.Color,
		ContactName:  p.ContactName,
		ContactPhone: p.ContactPhone,
		ContactEmail: p.ContactEmail,
		LastSeenDate: p.LastSeenDate,
		Images:       images,
		Location: lostfoundsdk.Location{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
			Address:   p.Location.Address,
			City:      p.Location.City,
			Region:    p.Location.Region,
			Country:   p.Location.Country,
		},
		Status:       string(p.Status),
		Priority:     string(p.Priority),
		RewardAmount: p.RewardAmount,
		IsPublic:     p.IsPublic,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// toPostWithAuthor includes the reporter. withRole is set for admin views.
func toPostWithAuthor(p domain.PostWithAuthor, withRole bool) lostfoundsdk.Post {
	out := toPost(p.Post)
	if p.Author.ID != "" {
		out.User = &lostfoundsdk.PostAuthor{ID: p.Author.ID, Name: p.Author.Name, Email: p.Author.Email}
		if withRole {
			out.User.Role = string(p.Author.Role)
		}
	}
	return out
}

func toPosts(ps []domain.PostWithAuthor, withRole bool) []lostfoundsdk.Post {
	out := make([]lostfoundsdk.Post, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPostWithAuthor(p, withRole))
	}
	return out
}

func toWeekly(bs []domain.Bucket) []lostfoundsdk.WeeklyBucket {
	out := make([]lostfoundsdk.WeeklyBucket, 0, len(bs))
	for _, b := range bs {
		out = append(out, lostfoundsdk.WeeklyBucket{Key: b.Key, Name: b.Label, Lost: b.Lost, Found: b.Found})
	}
	return out
}

func toMonthly(bs []domain.Bucket) []lostfoundsdk.MonthlyBucket {
	out := make([]lostfoundsdk.MonthlyBucket, 0, len(bs))
	for _, b := range bs {
		out = append(out, lostfoundsdk.MonthlyBucket{Key: b.Key, Month: b.Label, Lost: b.Lost, Found: b.Found})
	}
	return out
}
