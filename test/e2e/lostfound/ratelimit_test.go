//go:build e2e

package lostfound_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/lostfound/pkg/lostfoundsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitAcceptEndpoint verifies invite acceptance is rate limited.
// It shares the strict tier (5 req/min) with the credential endpoints.
func TestRateLimitAcceptEndpoint(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := lostfoundsdk.NewSDKClient(baseURL)

	var lastErr error
	for i := range 6 {
		_, _, err := client.AcceptInvite(t.Context(), lostfoundsdk.AcceptInviteRequest{Token: "guess"})
		if i < 5 {
			assertStatus(t, err, http.StatusBadRequest, "bad token before the limit")
		} else {
			lastErr = err
		}
	}

	require.True(t, lostfoundsdk.IsStatus(lastErr, http.StatusTooManyRequests),
		"Should be rate limited after 5 requests, got: %v", lastErr)
}
