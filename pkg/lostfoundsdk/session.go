package lostfoundsdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// SessionCookieName is the cookie the server sets on login.
const SessionCookieName = "token"

// ErrNoSession is returned by Session methods after Logout.
var ErrNoSession = errors.New("lostfound: no session token")

// Session is an authenticated session. The server issues a single session
// token with no refresh; once it expires the caller has to log in again.
type Session struct {
	client *SDKClient

	mu    sync.RWMutex
	token string
}

// Token returns the raw session token, e.g. for caching between runs.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CheckAuth returns the user the session belongs to.
func (s *Session) CheckAuth(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/auth/check-auth", nil, nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	return &user, nil
}

// Logout clears the session cookie on the server side and forgets the
// token. Session tokens are stateless, so a copy kept elsewhere stays valid
// until it expires.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil {
		return err
	}

	var msg MessageResponse
	if err := decodeJSON(resp, &msg, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
