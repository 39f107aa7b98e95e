package httpx

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimit allows Requests per Window with bursts of up to Burst. It
// decodes from "<requests>/<window>" (e.g. "5/1m") so it can be set straight
// from the environment; the burst then equals the request count.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Profiles used by the router.
var (
	// StrictLimit guards credential and invite acceptance endpoints.
	StrictLimit = RateLimit{Requests: 5, Window: time.Minute, Burst: 5}
	// ModerateLimit covers authenticated writes.
	ModerateLimit = RateLimit{Requests: 30, Window: time.Minute, Burst: 30}
	// LenientLimit covers authenticated reads.
	LenientLimit = RateLimit{Requests: 120, Window: time.Minute, Burst: 120}
	// PublicLimit covers anonymous reads.
	PublicLimit = RateLimit{Requests: 600, Window: time.Minute, Burst: 600}
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *RateLimit) UnmarshalText(text []byte) error {
	parsed, err := ParseRateLimit(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l RateLimit) String() string {
	return fmt.Sprintf("%d/%s", l.Requests, l.Window)
}

// ParseRateLimit parses "<requests>/<window>", where window is a Go duration.
func ParseRateLimit(s string) (RateLimit, error) {
	reqs, window, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return RateLimit{}, fmt.Errorf("rate limit %q: want <requests>/<window>", s)
	}

	n, err := strconv.Atoi(reqs)
	if err != nil || n <= 0 {
		return RateLimit{}, fmt.Errorf("rate limit %q: requests must be a positive integer", s)
	}

	d, err := time.ParseDuration(window)
	if err != nil || d <= 0 {
		return RateLimit{}, fmt.Errorf("rate limit %q: window must be a positive duration", s)
	}

	return RateLimit{Requests: n, Window: d, Burst: n}, nil
}

// KeyExtractor groups requests into rate limit buckets.
type KeyExtractor func(*http.Request) string

// ClientIP returns the caller's address, honouring X-Forwarded-For and
// X-Real-IP set by a reverse proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserOrIP keys authenticated requests by user and the rest by address.
func UserOrIP(r *http.Request) string {
	if id := UserID(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + ClientIP(r)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per key and forgets idle keys.
type limiterSet struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	idle    time.Duration
	swept   time.Time
	now     func() time.Time
}

func newLimiterSet(l RateLimit) *limiterSet {
	return &limiterSet{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(l.Requests) / l.Window.Seconds()),
		burst:   max(l.Burst, 1),
		idle:    max(l.Window*2, 5*time.Minute),
		swept:   time.Now(),
		now:     time.Now,
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.swept) > s.idle {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > s.idle {
				delete(s.entries, k)
			}
		}
		s.swept = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimitMiddleware rejects requests above l with 429, per key.
func RateLimitMiddleware(l RateLimit, key KeyExtractor) Middleware {
	set := newLimiterSet(l)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			limiter := set.get(k)
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Requests))
			w.Header().Set("X-RateLimit-Window", l.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		})
	}
}

// RateLimitByIP limits per client address.
func RateLimitByIP(l RateLimit) Middleware {
	return RateLimitMiddleware(l, ClientIP)
}

// RateLimitByUser limits per authenticated user, falling back to address.
func RateLimitByUser(l RateLimit) Middleware {
	return RateLimitMiddleware(l, UserOrIP)
}
