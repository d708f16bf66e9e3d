package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wardenauth/warden/internal/auth/domain"
	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/pkg/httpx"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService     *service.AuthService
	TokenService    *service.TokenService
	PasswordService *service.PasswordService
	MFAService      *service.MFAService
	UserService     *service.UserService

	// DeliverResetToken connects the forgot-password flow to its delivery
	// channel. Set before ApplyRoutes.
	DeliverResetToken func(email, token string)
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
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
	r.registerAuth()
	r.registerPassword()
	r.registerMFA()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn verifies the bearer access token and checks it against the
// revocation registry.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.store.Revocations())
}

func (r *Router) registerAuth() {
	// POST /auth/register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP + username so a brute force
	// against one account cannot hide behind many addresses
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{AuthService: r.AuthService},
			httpx.RateLimitByIPAndBodyField(httpx.StrictLimit, "username"),
		),
	)

	// POST /auth/refresh - moderate rate limit by IP
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/logout - moderate rate limit by IP
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /auth/me - authenticated, lenient rate limit by user
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(&UserInfoHandler{AuthService: r.AuthService},
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerPassword() {
	// POST /auth/forgot-password - strict rate limit by IP (enumeration and
	// mail-bomb guard)
	r.Mux.Handle("POST /auth/forgot-password",
		httpx.Chain(&ForgotPasswordHandler{PasswordService: r.PasswordService, DeliverResetToken: r.DeliverResetToken},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/reset-password - strict rate limit by IP
	r.Mux.Handle("POST /auth/reset-password",
		httpx.Chain(&ResetPasswordHandler{PasswordService: r.PasswordService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	// POST /auth/mfa - strict rate limit by IP (TOTP brute force guard)
	r.Mux.Handle("POST /auth/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleExchange),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/mfa/enroll - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /auth/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /auth/mfa/activate - authenticated, strict rate limit by user
	r.Mux.Handle("POST /auth/mfa/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			r.authn(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminUsersHandler{UserService: r.UserService}

	// GET /admin/users - admin only, moderate rate limit by user
	r.Mux.Handle("GET /admin/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// PUT /admin/users/{id}/role - admin only, moderate rate limit by user
	r.Mux.Handle("PUT /admin/users/{id}/role",
		httpx.Chain(http.HandlerFunc(h.HandleSetRole),
			r.authn(),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health endpoints - lenient rate limits, monitoring may poll often
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
