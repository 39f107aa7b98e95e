package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
)

// Error kinds. Every error a service returns on purpose matches exactly one
// of these with errors.Is; anything else is an unexpected failure.
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInviteExpired     = errors.New("invite expired")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// Error is a failure of a known kind with a message fit for the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func validationf(format string, args ...any) *Error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrEmailRequired       = newError(ErrValidation, "Email is required")
	ErrEmailInvalid        = newError(ErrValidation, "Email is invalid")
	ErrAlreadyAdmin        = newError(ErrConflict, "User is already an admin")
	ErrInviteNotFound      = newError(ErrNotFound, "Invite not found")
	ErrTokenRequired       = newError(ErrValidation, "Token is required")
	ErrUnknownInviteToken  = newError(ErrInvalidToken, "Invalid or expired invite")
	ErrAcceptNeedsAccount  = newError(ErrValidation, "Name and password are required to create admin account")
	ErrSignupFieldsMissing = newError(ErrValidation, "All fields are required")
	ErrEmailTaken          = newError(ErrConflict, "User already exists")
	ErrInvalidCredentials  = newError(ErrValidation, "Invalid credentials")
	ErrUserNotFound        = newError(ErrNotFound, "User not found")
	ErrPostNotFound        = newError(ErrNotFound, "Post not found")
	ErrInvalidStatus       = newError(ErrValidation, "Invalid status")
	ErrNotPostOwner        = newError(ErrForbidden, "Not allowed to modify this post")
	ErrCannotDeleteSelf    = newError(ErrValidation, "You cannot delete your own account")
	ErrSessionUnknownUser  = newError(ErrUnauthorized, "Unauthorized")
)

// InvalidTransitionError reports an operation the invite state machine does
// not allow from Status.
type InvalidTransitionError struct {
	Action string // "revoke", "accept"
	Status domain.InviteStatus
}

// An accept against an expired invite fails the same way whether this call
// performed the flip to expired or an earlier one did.
func (e *InvalidTransitionError) Error() string {
	if e.Action == "accept" && e.Status == domain.InviteStatusExpired {
		return "Invite expired"
	}
	if e.Action == "accept" {
		return fmt.Sprintf("Invite already %s", e.Status)
	}
	return fmt.Sprintf("Cannot %s invite with status %s", e.Action, e.Status)
}

func (e *InvalidTransitionError) Is(target error) bool {
	if target == ErrInviteExpired {
		return e.Status == domain.InviteStatusExpired
	}
	return target == ErrInvalidTransition
}
