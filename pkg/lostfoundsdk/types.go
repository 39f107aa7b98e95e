package lostfoundsdk

import (
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
)

// ============================================================================
// Common
// ============================================================================

// MessageResponse is the envelope of every error and of bodies that carry
// nothing but a message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// User is an account as returned by the API. The password hash is never
// serialised.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"` // "user" or "admin"
	IsVerified bool       `json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    User   `json:"user"`
}

// ============================================================================
// Auth
// ============================================================================

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ============================================================================
// Invites
// ============================================================================

// Invite is an admin invitation. The token itself is never returned, only
// the accept link on create and resend.
type Invite struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	InvitedBy  string     `json:"invitedBy"`
	Status     string     `json:"status"` // pending, accepted, revoked or expired
	ExpiresAt  time.Time  `json:"expiresAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type CreateInviteRequest struct {
	Email string `json:"email"`
}

// InviteResponse is returned by create, resend and revoke. AcceptURL is set
// for create and resend only.
type InviteResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Invite    Invite `json:"invite"`
	AcceptURL string `json:"acceptUrl,omitempty"`
}

type InviteListResponse struct {
	Success bool     `json:"success"`
	Invites []Invite `json:"invites"`
}

// AcceptInviteRequest redeems an invite. Name and Password are needed only
// when no account exists for the invited email.
type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

// ============================================================================
// Posts
// ============================================================================

type Image struct {
	URL        string    `json:"url"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
}

// PostAuthor is the reporter shown alongside a post.
type PostAuthor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type Post struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	User         *PostAuthor `json:"user,omitempty"`
	Type         string      `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	PersonName   string      `json:"personName,omitempty"`
	Age          *int        `json:"age,omitempty"`
	Gender       string      `json:"gender,omitempty"`
	ItemName     string      `json:"itemName,omitempty"`
	Category     string      `json:"category,omitempty"`
	Brand        string      `json:"brand,omitempty"`
	Color        string      `json:"color,omitempty"`
	ContactName  string      `json:"contactName,omitempty"`
	ContactPhone string      `json:"contactPhone,omitempty"`
	ContactEmail string      `json:"contactEmail,omitempty"`
	LastSeenDate *time.Time  `json:"lastSeenDate,omitempty"`
	Images       []Image     `json:"images"`
	Location     Location    `json:"location"`
	Status       string      `json:"status"`
	Priority     string      `json:"priority"`
	RewardAmount *float64    `json:"rewardAmount,omitempty"`
	IsPublic     bool        `json:"isPublic"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type PostResponse struct {
	Success bool `json:"success"`
	Post    Post `json:"post"`
}

type PostsResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Posts   []Post `json:"posts"`
}

// CreatePostResponse is returned by the report form endpoint.
type CreatePostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
	PostID  string `json:"postId"`
	Post    Post   `json:"post"`
	User    User   `json:"user"`
}

type UpdatePostStatusRequest struct {
	Status string `json:"status"`
}

// PublicStatsResponse summarises public posts.
type PublicStatsResponse struct {
	Success  bool           `json:"success"`
	Total    int            `json:"total"`
	Resolved int            `json:"resolved"`
	Open     int            `json:"open"`
	Last7d   int            `json:"last7d"`
	ByType   map[string]int `json:"byType"`
}

// ============================================================================
// Admin listings and charts
// ============================================================================

type UserListResponse struct {
	Success    bool   `json:"success"`
	Page       int    `json:"page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	Users      []User `json:"users"`
}

type PostListResponse struct {
	Success    bool   `json:"success"`
	Page       int    `json:"page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	Posts      []Post `json:"posts"`
}

// ListQuery holds the optional filters of the admin listings.
type ListQuery struct {
	Q      string
	Status string
	Type   string // comma separated
	Page   int
	Limit  int
}

type WeeklyBucket struct {
	Key   string `json:"key"`  // YYYY-MM-DD
	Name  string `json:"name"` // Mon..Sun
	Lost  int    `json:"lost"`
	Found int    `json:"found"`
}

type MonthlyBucket struct {
	Key   string `json:"key"`   // YYYY-MM
	Month string `json:"month"` // Jan..Dec
	Lost  int    `json:"lost"`
	Found int    `json:"found"`
}

type WeeklyStatsResponse struct {
	Success bool           `json:"success"`
	Data    []WeeklyBucket `json:"data"`
}

type MonthlyStatsResponse struct {
	Success bool            `json:"success"`
	Data    []MonthlyBucket `json:"data"`
}

// ============================================================================
// Platform
// ============================================================================

// HealthResponse is returned by /livez, /readyz and /api/health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the key set that verifies session tokens.
type JWKSResponse jwtx.JWKS
