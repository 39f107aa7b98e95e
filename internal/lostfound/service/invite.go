package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	lfmail "github.com/aussiebroadwan/lostfound/internal/lostfound/mail"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

const (
	// DefaultInviteTTL is how long an accept link stays valid.
	DefaultInviteTTL = 7 * 24 * time.Hour

	// InviteListLimit caps List.
	InviteListLimit = 200
)

// IssuedInvite is an invite together with its plaintext token. The token is
// never stored, so this is the only moment it can be handed out.
type IssuedInvite struct {
	Invite    domain.Invite
	Token     string
	AcceptURL string
}

// AcceptResult is the outcome of a successful accept.
type AcceptResult struct {
	User    domain.User
	Session Session
	Created bool // a new account was created rather than promoted
}

// InviteService manages the admin invitation lifecycle.
type InviteService struct {
	Store    store.Store
	Notifier lfmail.Notifier
	Sessions Sessions
	Hasher   *cryptox.PasswordHasher

	// ClientURL is the dashboard origin accept links point at.
	ClientURL string
	TTL       time.Duration
	Now       func() time.Time
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInviteTTL
	}
	return s.TTL
}

// Create issues a new invite for email on behalf of issuerID, revoking any
// invite still pending for the same address.
func (s *InviteService) Create(ctx context.Context, email, issuerID string) (IssuedInvite, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the address.
	email, err := normalizeEmail(email)
	if err != nil {
		log.Warn("invite rejected: bad email")
		return IssuedInvite{}, err
	}

	// 2. Existing admins cannot be invited again.
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil && u.IsAdmin():
		log.Warn("invite rejected: user is already an admin", slog.String("user_id", u.ID))
		return IssuedInvite{}, ErrAlreadyAdmin
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.Error("failed to fetch user", slog.Any("error", err))
		return IssuedInvite{}, err
	}

	// 3. Mint the token; only its fingerprint is persisted.
	token, fingerprint, err := cryptox.NewInviteToken()
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return IssuedInvite{}, err
	}

	now := clock(s.Now)
	inv := domain.Invite{
		ID:        idx.NewAt(now).String(),
		Email:     email,
		TokenHash: fingerprint,
		InvitedBy: issuerID,
		Status:    domain.InviteStatusPending,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 4. Revoke what is still pending and store the new invite together.
	var revoked int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Invites().RevokePendingInvites(ctx, email, "", now)
		if err != nil {
			return err
		}
		revoked = n
		return tx.Invites().CreateInvite(ctx, inv)
	})
	if err != nil {
		log.Error("failed to store invite",
			slog.String("invite_id", inv.ID),
			slog.Any("error", err),
		)
		return IssuedInvite{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("email", email),
		slog.String("invited_by", issuerID),
		slog.Int64("revoked_pending", revoked),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	// 5. Send the link. The invite stands even when delivery fails.
	link := s.notify(ctx, inv, token, issuerID)
	return IssuedInvite{Invite: inv, Token: token, AcceptURL: link}, nil
}

// List returns the newest invites across all states.
func (s *InviteService) List(ctx context.Context) ([]domain.Invite, error) {
	invites, err := s.Store.Invites().ListInvites(ctx, InviteListLimit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invites", slog.Any("error", err))
		return nil, err
	}
	return invites, nil
}

// Revoke cancels a pending invite.
func (s *InviteService) Revoke(ctx context.Context, id string) (domain.Invite, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	err := s.Store.Invites().TransitionInvite(ctx, id, domain.InviteStatusPending, domain.InviteStatusRevoked, now)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Invite{}, ErrInviteNotFound
	case errors.Is(err, store.ErrStateChanged):
		return domain.Invite{}, s.transitionError(ctx, id, "revoke")
	case err != nil:
		log.Error("failed to revoke invite", slog.String("invite_id", id), slog.Any("error", err))
		return domain.Invite{}, err
	}

	inv, err := s.Store.Invites().GetInviteByID(ctx, id)
	if err != nil {
		log.Error("failed to reload invite", slog.String("invite_id", id), slog.Any("error", err))
		return domain.Invite{}, err
	}

	log.Info("invite revoked", slog.String("invite_id", id))
	return inv, nil
}

// Resend issues a fresh token and expiry for an invite in any state and puts
// it back to pending. Other pending invites for the same email are revoked.
func (s *InviteService) Resend(ctx context.Context, id, issuerID string) (IssuedInvite, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invites().GetInviteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return IssuedInvite{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invite", slog.String("invite_id", id), slog.Any("error", err))
		return IssuedInvite{}, err
	}

	token, fingerprint, err := cryptox.NewInviteToken()
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return IssuedInvite{}, err
	}

	now := clock(s.Now)
	expiresAt := now.Add(s.ttl())

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().ReissueInvite(ctx, id, fingerprint, expiresAt, now); err != nil {
			return err
		}
		_, err := tx.Invites().RevokePendingInvites(ctx, inv.Email, id, now)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Swept between the read and the write.
			return IssuedInvite{}, ErrInviteNotFound
		}
		log.Error("failed to reissue invite", slog.String("invite_id", id), slog.Any("error", err))
		return IssuedInvite{}, err
	}

	if inv.Status != domain.InviteStatusPending {
		log.Info("invite reopened by resend",
			slog.String("invite_id", id),
			slog.String("previous_status", string(inv.Status)),
		)
	}

	inv.TokenHash = fingerprint
	inv.Status = domain.InviteStatusPending
	inv.ExpiresAt = expiresAt
	inv.AcceptedAt = nil
	inv.UpdatedAt = now

	log.Info("invite resent", slog.String("invite_id", id), slog.Time("expires_at", expiresAt))

	link := s.notify(ctx, inv, token, issuerID)
	return IssuedInvite{Invite: inv, Token: token, AcceptURL: link}, nil
}

// Accept redeems token. A new admin account is created when none exists for
// the invited email, in which case name and password are required; an
// existing account is promoted in place.
func (s *InviteService) Accept(ctx context.Context, token, name, password string) (AcceptResult, error) {
	log := slogx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return AcceptResult{}, ErrTokenRequired
	}

	// 1. Find the invite by fingerprint.
	inv, err := s.Store.Invites().GetInviteByTokenHash(ctx, cryptox.Fingerprint(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite accept attempted with unknown token")
			return AcceptResult{}, ErrUnknownInviteToken
		}
		log.Error("failed to fetch invite", slog.Any("error", err))
		return AcceptResult{}, err
	}
	log = log.With(slog.String("invite_id", inv.ID))

	// 2. Only pending invites can be accepted.
	if inv.Status != domain.InviteStatusPending {
		log.Warn("invite accept attempted in terminal state", slog.String("status", string(inv.Status)))
		return AcceptResult{}, &InvalidTransitionError{Action: "accept", Status: inv.Status}
	}

	// 3. Stale invites are flipped to expired before failing.
	now := clock(s.Now)
	if inv.ExpiredAt(now) {
		err := s.Store.Invites().TransitionInvite(ctx, inv.ID, domain.InviteStatusPending, domain.InviteStatusExpired, now)
		switch {
		case err == nil:
			log.Info("invite expired on accept")
		case errors.Is(err, store.ErrNotFound):
			return AcceptResult{}, ErrUnknownInviteToken
		case errors.Is(err, store.ErrStateChanged):
			return AcceptResult{}, s.transitionError(ctx, inv.ID, "accept")
		default:
			log.Error("failed to expire invite", slog.Any("error", err))
			return AcceptResult{}, err
		}
		return AcceptResult{}, &InvalidTransitionError{Action: "accept", Status: domain.InviteStatusExpired}
	}

	// 4. Resolve the account. Validation happens before any write.
	existing, err := s.Store.Users().GetUserByEmail(ctx, inv.Email)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to fetch user", slog.Any("error", err))
		return AcceptResult{}, err
	}

	var user domain.User
	if found {
		user = existing
	} else {
		name = strings.TrimSpace(name)
		if name == "" || password == "" {
			log.Warn("invite accept missing name or password for new account")
			return AcceptResult{}, ErrAcceptNeedsAccount
		}

		hash, err := s.Hasher.Hash(password)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return AcceptResult{}, err
		}
		user = domain.User{
			ID:           idx.NewAt(now).String(),
			Name:         name,
			Email:        inv.Email,
			PasswordHash: hash,
			CreatedAt:    now,
		}
	}
	user.Role = domain.RoleAdmin
	user.IsVerified = true
	user.UpdatedAt = now

	// 5. Accept and create/promote atomically. The conditional update lets
	// exactly one concurrent accept through.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().AcceptInvite(ctx, inv.ID, now); err != nil {
			return err
		}
		if found {
			return tx.Users().PromoteToAdmin(ctx, user.ID, now)
		}
		return tx.Users().CreateUser(ctx, user)
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrStateChanged):
		return AcceptResult{}, s.transitionError(ctx, inv.ID, "accept")
	case errors.Is(err, store.ErrNotFound):
		// Either the sweep removed the invite or the user vanished.
		return AcceptResult{}, ErrUnknownInviteToken
	case errors.Is(err, store.ErrAlreadyExists):
		// An account for this email appeared after the lookup.
		log.Warn("invite accept raced a signup for the same email")
		return AcceptResult{}, newError(ErrConflict, "User already exists, try again")
	default:
		log.Error("failed to accept invite", slog.Any("error", err))
		return AcceptResult{}, err
	}

	log.Info("invite accepted",
		slog.String("user_id", user.ID),
		slog.Bool("created", !found),
	)

	// 6. Issue the session.
	sess, err := s.Sessions.Issue(ctx, user)
	if err != nil {
		return AcceptResult{}, err
	}

	// 7. Never hand the hash back.
	user.PasswordHash = ""
	return AcceptResult{User: user, Session: sess, Created: !found}, nil
}

// transitionError re-reads an invite whose conditional update lost, so the
// error can name the status it is actually in.
func (s *InviteService) transitionError(ctx context.Context, id, action string) error {
	inv, err := s.Store.Invites().GetInviteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if action == "accept" {
				return ErrUnknownInviteToken
			}
			return ErrInviteNotFound
		}
		slogx.FromContext(ctx).Error("failed to reload invite", slog.String("invite_id", id), slog.Any("error", err))
		return err
	}
	return &InvalidTransitionError{Action: action, Status: inv.Status}
}

// notify sends the invite email and returns the accept link. Failures are
// logged only.
func (s *InviteService) notify(ctx context.Context, inv domain.Invite, token, issuerID string) string {
	log := slogx.FromContext(ctx)

	link, err := lfmail.AcceptLink(s.ClientURL, token)
	if err != nil {
		log.Error("failed to build accept link", slog.String("invite_id", inv.ID), slog.Any("error", err))
		return ""
	}
	if s.Notifier == nil {
		return link
	}

	msg := lfmail.AdminInvite{To: inv.Email, AcceptURL: link, ExpiresAt: inv.ExpiresAt}
	if issuer, err := s.Store.Users().GetUserByID(ctx, issuerID); err == nil {
		msg.InvitedBy = issuer.Name
	}

	if err := s.Notifier.SendAdminInvite(ctx, msg); err != nil {
		log.Error("failed to send invite email",
			slog.String("invite_id", inv.ID),
			slog.Any("error", err),
		)
	}
	return link
}

// normalizeEmail trims and lowercases email and checks it is a bare address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}
