package domain

import "math"

// Page selects a window of a newest-first listing. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	if p.Number < 1 || p.Limit < 1 {
		return 0
	}
	return (min(p.Number, MaxPageNumber(p.Limit)) - 1) * p.Limit
}

// MaxPageNumber is the largest page whose offset fits in an int.
func MaxPageNumber(limit int) int {
	if limit < 1 {
		return math.MaxInt
	}
	return math.MaxInt / limit
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int) int {
	if p.Limit < 1 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// PostQuery is a backend-neutral post filter.
//
// Types restricts to the listed post types; an empty non-nil slice matches
// nothing, while nil means "any type". Search matches case-insensitively as
// a substring of title, description, person name, item name or category.
type PostQuery struct {
	Types      []PostType
	Search     string
	Status     PostStatus
	OwnerID    string
	PublicOnly bool

	// Zero Page returns every match.
	Page Page
}

// UserQuery filters users by a case-insensitive substring of name or email.
type UserQuery struct {
	Search string
	Page   Page
}
