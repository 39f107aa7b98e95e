package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// BootstrapAdmin describes the first administrator seeded at startup.
type BootstrapAdmin struct {
	Name     string
	Email    string
	Password string
}

// BootstrapService seeds an admin so a fresh deployment can issue invites.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Now    func() time.Time
}

// EnsureAdmin creates the admin unless an account with that email exists.
// It reports whether an account was created. An existing account is left
// untouched, even if it is not an admin.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, a BootstrapAdmin) (bool, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate configuration
	email, err := normalizeEmail(a.Email)
	if err != nil {
		return false, err
	}
	if a.Password == "" {
		return false, validationf("bootstrap admin password is required")
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = "Administrator"
	}

	// 2. Skip when the account is already there
	existing, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			l.Warn("bootstrap admin email belongs to a non-admin account", slog.String("user_id", existing.ID))
		}
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		l.Error("failed to fetch bootstrap admin", slog.Any("error", err))
		return false, err
	}

	// 3. Create it
	hash, err := s.Hasher.Hash(a.Password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return false, err
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return false, nil
		}
		l.Error("failed to create admin user", slog.Any("error", err))
		return false, err
	}

	l.Info("bootstrap admin created", slog.String("admin_user_id", u.ID))
	return true, nil
}
