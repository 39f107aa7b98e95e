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

// AuthResult is a user together with a fresh session.
type AuthResult struct {
	User    domain.User
	Session Session
}

// AuthService handles account sign-up and password login.
type AuthService struct {
	Store    store.Store
	Hasher   *cryptox.PasswordHasher
	Sessions Sessions
	Now      func() time.Time
}

// Signup creates a regular user and signs them in.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(email) == "" || password == "" {
		return AuthResult{}, ErrSignupFieldsMissing
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return AuthResult{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return AuthResult{}, err
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("signup rejected: email taken")
			return AuthResult{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return AuthResult{}, err
	}

	log.Info("user signed up", slog.String("user_id", u.ID))
	return s.session(ctx, u)
}

// Login checks a password and records the login time.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}

	now := clock(s.Now)
	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, now); err != nil {
		log.Error("failed to record last login", slog.String("user_id", u.ID), slog.Any("error", err))
		return AuthResult{}, err
	}
	u.LastLogin = &now

	log.Info("user logged in", slog.String("user_id", u.ID))
	return s.session(ctx, u)
}

// Authenticate resolves email/password to a user without side effects.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted for unknown email")
			return domain.User{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login attempted with wrong password", slog.String("user_id", u.ID))
			return domain.User{}, ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.String("user_id", u.ID), slog.Any("error", err))
		return domain.User{}, err
	}
	return u, nil
}

// CurrentUser loads the user behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch user", slog.String("user_id", userID), slog.Any("error", err))
		return domain.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// RoleOf returns the current role of userID, or ErrUserNotFound.
func (s *AuthService) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *AuthService) session(ctx context.Context, u domain.User) (AuthResult, error) {
	sess, err := s.Sessions.Issue(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	u.PasswordHash = ""
	return AuthResult{User: u, Session: sess}, nil
}
