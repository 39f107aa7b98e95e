package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2id PHC string
	Role         Role
	IsVerified   bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserSummary is the slice of a user shown next to the posts they filed.
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Role  Role
}
