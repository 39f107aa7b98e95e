package domain

import "time"

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRevoked  InviteStatus = "revoked"
	InviteStatusExpired  InviteStatus = "expired"
)

// Terminal reports whether no transition may leave s.
func (s InviteStatus) Terminal() bool {
	return s != InviteStatusPending
}

// Invite grants one email address the right to become an admin. Email and
// InvitedBy never change after creation.
type Invite struct {
	ID         string
	Email      string
	TokenHash  string // fingerprint of the accept token
	InvitedBy  string // user id of the issuing admin
	Status     InviteStatus
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExpiredAt reports whether the invite is stale at now. The boundary is
// strict: an invite expiring exactly at now is still valid. Both sides are
// compared at millisecond precision, the resolution the store keeps and
// the sweep deletes at.
func (i Invite) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt.Truncate(time.Millisecond).Before(now.Truncate(time.Millisecond))
}
