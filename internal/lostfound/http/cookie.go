package http

import (
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	MaxAge     int // seconds
	Production bool
}

func (c CookieConfig) set(w http.ResponseWriter, s service.Session) {
	httpx.SetSessionCookie(w, s.Token, c.MaxAge, c.Production)
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	httpx.ClearSessionCookie(w, c.Production)
}
