package domain

import "time"

type PostType string

const (
	PostTypeLostPerson  PostType = "lost_person"
	PostTypeFoundPerson PostType = "found_person"
	PostTypeLostItem    PostType = "lost_item"
	PostTypeFoundItem   PostType = "found_item"
)

// AllPostTypes in display order.
var AllPostTypes = []PostType{
	PostTypeLostPerson,
	PostTypeFoundPerson,
	PostTypeLostItem,
	PostTypeFoundItem,
}

func (t PostType) Valid() bool {
	switch t {
	case PostTypeLostPerson, PostTypeFoundPerson, PostTypeLostItem, PostTypeFoundItem:
		return true
	}
	return false
}

// IsLost reports whether t is one of the "lost" report kinds. Everything
// else counts as "found" in statistics.
func (t PostType) IsLost() bool {
	return t == PostTypeLostPerson || t == PostTypeLostItem
}

func (t PostType) IsPerson() bool {
	return t == PostTypeLostPerson || t == PostTypeFoundPerson
}

type PostStatus string

const (
	PostStatusOpen     PostStatus = "open"
	PostStatusClosed   PostStatus = "closed"
	PostStatusResolved PostStatus = "resolved"
)

func (s PostStatus) Valid() bool {
	return s == PostStatusOpen || s == PostStatusClosed || s == PostStatusResolved
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

type Image struct {
	URL        string
	Caption    string
	UploadedAt time.Time
}

type Location struct {
	Latitude  *float64
	Longitude *float64
	Address   string
	City      string
	Region    string
	Country   string
}

// Post is a lost or found report.
type Post struct {
	ID          string
	UserID      string
	Type        PostType
	Title       string
	Description string

	// Person reports
	PersonName string
	Age        *int
	Gender     Gender

	// Item reports
	ItemName string
	Category string
	Brand    string
	Color    string

	ContactName  string
	ContactPhone string
	ContactEmail string
	LastSeenDate *time.Time

	Images       []Image
	Location     Location
	Status       PostStatus
	Priority     Priority
	RewardAmount *float64
	IsPublic     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostWithAuthor is a post joined with the user who filed it.
type PostWithAuthor struct {
	Post
	Author UserSummary
}
