package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStateChanged is returned by conditional updates when the row exists
	// but no longer holds the expected state.
	ErrStateChanged = errors.New("store: state changed")
)

// Store is the root data access interface. Sub-repositories are exposed as
// methods so a Tx can hand out the same repositories bound to a transaction.
type Store interface {
	Users() Users
	Invites() Invites
	Posts() Posts

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the normalised (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// PromoteToAdmin sets role=admin and is_verified=1.
	PromoteToAdmin(ctx context.Context, userID string, now time.Time) error

	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// DeleteUser cascades to the user's posts.
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers returns one page, newest first, plus the total match count.
	ListUsers(ctx context.Context, q domain.UserQuery) ([]domain.User, int, error)

	CountUsers(ctx context.Context) (int, error)
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.Invite) error

	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)

	// GetInviteByTokenHash looks up an invite of any status by fingerprint.
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// ListInvites returns the newest invites first.
	ListInvites(ctx context.Context, limit int) ([]domain.Invite, error)

	// RevokePendingInvites moves every pending invite for email, except
	// exceptID, to revoked and returns how many changed.
	RevokePendingInvites(ctx context.Context, email, exceptID string, now time.Time) (int64, error)

	// TransitionInvite moves an invite from one status to another only if it
	// still holds from. It returns ErrNotFound for an unknown id and
	// ErrStateChanged if the status differs.
	TransitionInvite(ctx context.Context, id string, from, to domain.InviteStatus, now time.Time) error

	// AcceptInvite is TransitionInvite(pending -> accepted) that also stamps
	// accepted_at.
	AcceptInvite(ctx context.Context, id string, now time.Time) error

	// ReissueInvite replaces the token and expiry and forces status back to
	// pending regardless of the current status.
	ReissueInvite(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error

	// DeleteExpiredInvites physically removes invites with expires_at < now.
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)
}

type Posts interface {
	CreatePost(ctx context.Context, p domain.Post) error

	GetPostByID(ctx context.Context, id string) (domain.PostWithAuthor, error)

	// ListPosts returns matches newest first plus the total match count.
	ListPosts(ctx context.Context, q domain.PostQuery) ([]domain.PostWithAuthor, int, error)

	UpdatePostStatus(ctx context.Context, id string, status domain.PostStatus, now time.Time) error

	// CountPostsByDay groups posts created at or after since by UTC day
	// ("YYYY-MM-DD") and type.
	CountPostsByDay(ctx context.Context, since time.Time) ([]domain.TypeCount, error)

	// CountPostsByMonth groups by UTC month ("YYYY-MM") and type.
	CountPostsByMonth(ctx context.Context, since time.Time) ([]domain.TypeCount, error)

	// Stats summarises public posts; Last7d counts those created at or after
	// since.
	Stats(ctx context.Context, since time.Time) (domain.PostStats, error)
}
