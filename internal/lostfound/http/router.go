package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/lostfound/domain"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"

	_ "github.com/aussiebroadwan/lostfound/api/lostfound" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the per-tier limits applied by the router. Zero fields
// fall back to the httpx profiles.
type RateLimits struct {
	Strict   httpx.RateLimit
	Moderate httpx.RateLimit
	Lenient  httpx.RateLimit
	Public   httpx.RateLimit
}

func (l RateLimits) withDefaults() RateLimits {
	if l.Strict.Requests == 0 {
		l.Strict = httpx.StrictLimit
	}
	if l.Moderate.Requests == 0 {
		l.Moderate = httpx.ModerateLimit
	}
	if l.Lenient.Requests == 0 {
		l.Lenient = httpx.LenientLimit
	}
	if l.Public.Requests == 0 {
		l.Public = httpx.PublicLimit
	}
	return l
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         KeySource
	verifier     httpx.TokenVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService   *service.AuthService
	InviteService *service.InviteService
	PostService   *service.PostService
	AdminService  *service.AdminService

	Uploads        http.Handler // optional; serves /uploads/
	Cookie         CookieConfig
	MaxUploadBytes int64
	RateLimits     RateLimits
	CORSOrigins    []string
}

func NewRouter(
	keys KeySource,
	verifier httpx.TokenVerifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.RateLimits = r.RateLimits.withDefaults()
	if len(r.CORSOrigins) > 0 {
		r.middlewares = append(r.middlewares, httpx.CORS(r.CORSOrigins...))
	}

	r.registerAuth()
	r.registerInvites()
	r.registerAdmin()
	r.registerPosts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Lost & Found API
//	@version		0.1.0
//	@description	Lost and found reporting backend with an admin dashboard.
//	@description
//	@description				Sessions are EdDSA-signed JWTs carried in the "token" cookie or an Authorization header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/lostfound
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}". Browsers send the "token" cookie instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// roleOf adapts AuthService.RoleOf for httpx.RequireRole.
func (r *Router) roleOf(ctx context.Context, userID string) (string, error) {
	role, err := r.AuthService.RoleOf(ctx, userID)
	if errors.Is(err, service.ErrNotFound) {
		return "", httpx.ErrUnknownSubject
	}
	return string(role), err
}

// admin guards a handler behind a session of a current admin.
func (r *Router) admin(h http.HandlerFunc, limit httpx.RateLimit) http.Handler {
	return httpx.Chain(h,
		httpx.Authenticate(r.verifier),
		httpx.RequireRole(r.roleOf, string(domain.RoleAdmin), "Forbidden - Admins only"),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Cookie: r.Cookie}

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(r.RateLimits.Strict),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.RateLimits.Strict),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.RateLimits.Moderate),
		),
	)
	r.Mux.Handle("GET /api/auth/check-auth",
		httpx.Chain(http.HandlerFunc(h.HandleCheckAuth),
			httpx.Authenticate(r.verifier),
			httpx.RateLimitByUser(r.RateLimits.Lenient),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService, Cookie: r.Cookie}

	r.Mux.Handle("POST /api/admin/invites", r.admin(h.HandleCreate, r.RateLimits.Moderate))
	r.Mux.Handle("GET /api/admin/invites", r.admin(h.HandleList, r.RateLimits.Lenient))
	r.Mux.Handle("POST /api/admin/invites/{id}/resend", r.admin(h.HandleResend, r.RateLimits.Moderate))
	r.Mux.Handle("DELETE /api/admin/invites/{id}", r.admin(h.HandleRevoke, r.RateLimits.Moderate))

	// POST /invites/accept - public, strict rate limit by IP (token guessing)
	r.Mux.Handle("POST /api/admin/invites/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIP(r.RateLimits.Strict),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}

	r.Mux.Handle("GET /api/admin/users", r.admin(h.HandleListUsers, r.RateLimits.Lenient))
	r.Mux.Handle("DELETE /api/admin/users/{id}", r.admin(h.HandleDeleteUser, r.RateLimits.Moderate))
	r.Mux.Handle("GET /api/admin/posts", r.admin(h.HandleListPosts, r.RateLimits.Lenient))
	r.Mux.Handle("GET /api/admin/reports/lost", r.admin(h.HandleLostReports, r.RateLimits.Lenient))
	r.Mux.Handle("GET /api/admin/reports/found", r.admin(h.HandleFoundReports, r.RateLimits.Lenient))
	r.Mux.Handle("GET /api/admin/items", r.admin(h.HandleItems, r.RateLimits.Lenient))
	r.Mux.Handle("GET /api/admin/stats/weekly", r.admin(h.HandleWeeklyStats, r.RateLimits.Lenient))
	r.Mux.Handle("GET /api/admin/stats/monthly", r.admin(h.HandleMonthlyStats, r.RateLimits.Lenient))
}

func (r *Router) registerPosts() {
	h := &PostsHandler{PostService: r.PostService, Cookie: r.Cookie, MaxUploadBytes: r.MaxUploadBytes}

	// Report form - anonymous or signed in, strict rate limit by IP (may register users)
	r.Mux.Handle("POST /api/posts/create",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.OptionalAuthenticate(r.verifier),
			httpx.RateLimitByIP(r.RateLimits.Strict),
		),
	)

	r.Mux.Handle("GET /api/posts",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /api/posts/stats/public",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /api/posts/mine/me",
		httpx.Chain(http.HandlerFunc(h.HandleMine),
			httpx.Authenticate(r.verifier),
			httpx.RateLimitByUser(r.RateLimits.Lenient),
		),
	)
	r.Mux.Handle("GET /api/posts/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("PATCH /api/posts/{id}/status",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateStatus),
			httpx.Authenticate(r.verifier),
			httpx.RateLimitByUser(r.RateLimits.Moderate),
		),
	)

	if r.Uploads != nil {
		r.Mux.Handle("GET /uploads/",
			httpx.Chain(r.Uploads,
				httpx.RateLimitByIP(r.RateLimits.Public),
			),
		)
	}
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.RateLimits.Lenient),
		),
	)

	ready := ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ready,
			httpx.RateLimitByIP(r.RateLimits.Lenient),
		),
	)
	r.Mux.Handle("GET /api/health",
		httpx.Chain(ready,
			httpx.RateLimitByIP(r.RateLimits.Lenient),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
}
