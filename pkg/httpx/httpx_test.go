package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(httpx.UserID(r.Context())))
})

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (jwtx.Claims, error) {
	sub, found := f[token]
	if !found {
		return jwtx.Claims{}, jwtx.ErrInvalidSig
	}
	return jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}, nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(ok, mw("a"), nil, mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestAuthenticate(t *testing.T) {
	h := httpx.Chain(ok, httpx.Authenticate(fakeVerifier{"good": "user-1"}))

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: "good"})
		}, http.StatusOK, "user-1"},
		{"bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good")
		}, http.StatusOK, "user-1"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, "Unauthorized - no token provided"},
		{"basic auth ignored", func(r *http.Request) {
			r.SetBasicAuth("a", "b")
		}, http.StatusUnauthorized, "Unauthorized - no token provided"},
		{"invalid", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: "bad"})
		}, http.StatusUnauthorized, "Unauthorized - invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				require.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				require.Equal(t, tt.wantBody, decodeError(t, rec).Message)
			}
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	h := httpx.Chain(ok, httpx.OptionalAuthenticate(fakeVerifier{"good": "user-1"}))

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"valid", "good", "user-1"},
		{"invalid falls through anonymous", "bad", ""},
		{"missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	roles := map[string]string{"admin-1": "admin", "user-1": "user"}
	lookup := func(_ context.Context, id string) (string, error) {
		if id == "broken" {
			return "", errors.New("db down")
		}
		role, found := roles[id]
		if !found {
			return "", httpx.ErrUnknownSubject
		}
		return role, nil
	}
	h := httpx.Chain(ok, httpx.RequireRole(lookup, "admin", "Forbidden - Admins only"))

	tests := []struct {
		name     string
		userID   string
		wantCode int
		wantMsg  string
	}{
		{"admin", "admin-1", http.StatusOK, ""},
		{"user", "user-1", http.StatusForbidden, "Forbidden - Admins only"},
		{"deleted", "ghost", http.StatusUnauthorized, "Unauthorized"},
		{"anonymous", "", http.StatusUnauthorized, "Unauthorized"},
		{"lookup error", "broken", http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(httpx.WithUserID(req.Context(), tt.userID))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantMsg != "" {
				require.Equal(t, tt.wantMsg, decodeError(t, rec).Message)
			}
		})
	}
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.SetSessionCookie(rec, "tok", 3600, false)
	c := rec.Result().Cookies()[0]
	require.Equal(t, "tok", c.Value)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 3600, c.MaxAge)

	rec = httptest.NewRecorder()
	httpx.SetSessionCookie(rec, "tok", 3600, true)
	c = rec.Result().Cookies()[0]
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteNoneMode, c.SameSite)

	rec = httptest.NewRecorder()
	httpx.ClearSessionCookie(rec, false)
	c = rec.Result().Cookies()[0]
	require.Empty(t, c.Value)
	require.Negative(t, c.MaxAge)
}

func TestCORS(t *testing.T) {
	h := httpx.Chain(ok, httpx.CORS("http://localhost:5173/"))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Email string }

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`))
	require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &v))
	require.Equal(t, "a@x.com", v.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{} {}`))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &v))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", httpx.ClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.2")
	require.Equal(t, "203.0.113.2", httpx.ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
}

func TestParseRateLimit(t *testing.T) {
	l, err := httpx.ParseRateLimit("5/1m")
	require.NoError(t, err)
	require.Equal(t, httpx.RateLimit{Requests: 5, Window: time.Minute, Burst: 5}, l)
	require.Equal(t, "5/1m0s", l.String())

	var u httpx.RateLimit
	require.NoError(t, u.UnmarshalText([]byte(" 100/30s ")))
	require.Equal(t, 100, u.Requests)
	require.Equal(t, 30*time.Second, u.Window)

	for _, bad := range []string{"", "5", "x/1m", "0/1m", "5/soon", "5/-1s"} {
		_, err := httpx.ParseRateLimit(bad)
		require.Error(t, err, bad)
	}
}

func TestRateLimitByIP(t *testing.T) {
	h := httpx.Chain(ok, httpx.RateLimitByIP(httpx.RateLimit{Requests: 2, Window: time.Minute, Burst: 2}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1").Code)
	require.Equal(t, http.StatusOK, do("10.0.0.1:2").Code)

	rec := do("10.0.0.1:3")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	// Buckets are per address.
	require.Equal(t, http.StatusOK, do("10.0.0.2:1").Code)
}

func TestRateLimitByUser(t *testing.T) {
	h := httpx.Chain(ok, httpx.RateLimitByUser(httpx.RateLimit{Requests: 1, Window: time.Minute, Burst: 1}))

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(httpx.WithUserID(req.Context(), user))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("a"))
	require.Equal(t, http.StatusTooManyRequests, do("a"))
	require.Equal(t, http.StatusOK, do("b"))
}
