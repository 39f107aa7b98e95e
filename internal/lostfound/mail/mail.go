// Package mail delivers the emails the platform sends, currently only the
// admin invitation.
package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AcceptPath is the SPA route that consumes invite tokens.
const AcceptPath = "accept-admin"

// AdminInvite is everything needed to tell someone they were invited.
type AdminInvite struct {
	To        string
	AcceptURL string
	ExpiresAt time.Time
	InvitedBy string // display name of the issuing admin, may be empty
}

// Notifier sends invite emails. Delivery is best effort: callers log failures
// and carry on.
type Notifier interface {
	SendAdminInvite(ctx context.Context, msg AdminInvite) error
}

// AcceptLink builds {clientURL}/accept-admin?token={token}. clientURL may
// carry its own path prefix.
func AcceptLink(clientURL, token string) (string, error) {
	base := strings.TrimSpace(clientURL)
	if base == "" {
		return "", fmt.Errorf("mail: client url is empty")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("mail: parse client url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("mail: client url %q must be absolute", clientURL)
	}

	u = u.JoinPath(AcceptPath)
	u.RawQuery = url.Values{"token": {token}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}
