package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
)

const inviteColumns = `id, email, token_hash, invited_by, status, expires_at, accepted_at, created_at, updated_at`

type invitesRepo struct {
	db dbtx
}

func scanInvite(row rowScanner) (domain.Invite, error) {
	var (
		inv                       domain.Invite
		status                    string
		expires, created, updated int64
		accepted                  sql.NullInt64
	)
	if err := row.Scan(&inv.ID, &inv.Email, &inv.TokenHash, &inv.InvitedBy, &status,
		&expires, &accepted, &created, &updated); err != nil {
		return domain.Invite{}, err
	}

	inv.Status = domain.InviteStatus(status)
	inv.ExpiresAt = fromMillis(expires)
	inv.AcceptedAt = fromNullMillis(accepted)
	inv.CreatedAt = fromMillis(created)
	inv.UpdatedAt = fromMillis(updated)
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invites (`+inviteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.TokenHash, inv.InvitedBy, string(inv.Status),
		toMillis(inv.ExpiresAt), toNullMillis(inv.AcceptedAt),
		toMillis(inv.CreatedAt), toMillis(inv.UpdatedAt),
	)
	return mapUnique(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE token_hash = ?`, hash))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) ListInvites(ctx context.Context, limit int) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+inviteColumns+` FROM invites
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	invites := make([]domain.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *invitesRepo) RevokePendingInvites(
	ctx context.Context,
	email, exceptID string,
	now time.Time,
) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites SET status = 'revoked', updated_at = ?
		WHERE email = ? AND status = 'pending' AND id <> ?`,
		toMillis(now), email, exceptID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitesRepo) TransitionInvite(
	ctx context.Context,
	id string,
	from, to domain.InviteStatus,
	now time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to), toMillis(now), id, string(from))
	return r.conditional(ctx, id, res, err)
}

func (r *invitesRepo) AcceptInvite(ctx context.Context, id string, now time.Time) error {
	ms := toMillis(now)
	res, err := r.db.ExecContext(ctx, `
		UPDATE invites SET status = 'accepted', accepted_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		ms, ms, id)
	return r.conditional(ctx, id, res, err)
}

func (r *invitesRepo) ReissueInvite(
	ctx context.Context,
	id, tokenHash string,
	expiresAt, now time.Time,
) error {
	err := expectOne(r.db.ExecContext(ctx, `
		UPDATE invites SET token_hash = ?, expires_at = ?, status = 'pending', accepted_at = NULL, updated_at = ?
		WHERE id = ?`,
		tokenHash, toMillis(expiresAt), toMillis(now), id))
	return mapUnique(err)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// conditional distinguishes a missing row from one whose state moved on
// when a guarded UPDATE touched nothing.
func (r *invitesRepo) conditional(ctx context.Context, id string, res sql.Result, err error) error {
	err = expectOne(res, err)
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	var one int
	switch err := r.db.QueryRowContext(ctx, `SELECT 1 FROM invites WHERE id = ?`, id).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case err != nil:
		return err
	default:
		return store.ErrStateChanged
	}
}
