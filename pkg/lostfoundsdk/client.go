package lostfoundsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the lost-and-found API. It provides the public
// operations and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the API rooted at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps a session token obtained earlier, e.g. one cached by the
// admin CLI.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
