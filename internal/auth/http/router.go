package http

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"

	_ "github.com/aussiebroadwan/sessionauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultBasePath prefixes every auth route.
const DefaultBasePath = "/api/v1/demo/auth"

// DefaultPublicPaths is the authentication filter's allow-list for base.
func DefaultPublicPaths(base string) []string {
	return []string{
		base + "/sign/",
		"/api/v1/demo/public/",
		"/css/",
		"/js/",
		"/images/",
		"/webjars/",
		"/favicon.ico",
		"/login",
		"/signup",
		"/livez",
		"/readyz",
		"/metrics",
		"/swagger/",
	}
}

// RouterConfig holds the knobs NewRouter needs besides its collaborators.
type RouterConfig struct {
	BasePath string

	// PublicPaths overrides DefaultPublicPaths when non-empty.
	PublicPaths []string

	Cookies httpx.CookieConfig

	// TrustedProxies may set X-Forwarded-For and X-Real-IP.
	TrustedProxies []netip.Prefix

	Limits RateLimits
}

// RateLimits overrides the httpx route classes. Zero values keep the
// package defaults.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg      RouterConfig
	verifier jwtx.Verifier
	key      KeyStatus
	db       Pinger
	sessions Pinger
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clientIP *httpx.ClientIP

	AuthService *service.AuthService
}

func NewRouter(
	cfg RouterConfig,
	verifier jwtx.Verifier,
	key KeyStatus,
	db, sessions Pinger,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	if len(cfg.PublicPaths) == 0 {
		cfg.PublicPaths = DefaultPublicPaths(cfg.BasePath)
	}
	cfg.Limits.Strict = cfg.Limits.Strict.OrDefault(httpx.StrictLimit)
	cfg.Limits.Moderate = cfg.Limits.Moderate.OrDefault(httpx.ModerateLimit)
	cfg.Limits.Lenient = cfg.Limits.Lenient.OrDefault(httpx.LenientLimit)

	r := &Router{
		Mux:      http.NewServeMux(),
		cfg:      cfg,
		verifier: verifier,
		key:      key,
		db:       db,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		clientIP: httpx.NewClientIP(cfg.TrustedProxies),
	}

	// Request logging wraps authentication so the access log sees the subject.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Authenticate(httpx.AuthnConfig{
			Verifier:    r.verifier,
			PublicPaths: cfg.PublicPaths,
			OnOutcome:   r.metrics.FilterOutcome,
		}),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSign()
	r.registerUser()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Session Auth Service API
//	@version		0.1.0
//	@description	Email/password authentication issuing HS256 JWT access and refresh tokens.
//	@description
//	@description				Tokens are returned in the body and as HttpOnly cookies. A Redis-backed session record tracks the latest pair per account.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/sessionauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) path(p string) string {
	return r.cfg.BasePath + p
}

// byIP limits per client address.
func (r *Router) byIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimit(cfg, r.clientIP.Of)
}

// byUser limits per subject and address, or address alone when anonymous.
func (r *Router) byUser(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimit(cfg, httpx.CompositeKeyExtractor(":",
		httpx.SubjectKeyExtractor,
		r.clientIP.Of,
	))
}

// byAccount limits password attempts per client address and normalized
// login email.
func (r *Router) byAccount(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimit(cfg, httpx.CompositeKeyExtractor(":",
		r.clientIP.Of,
		httpx.JSONFieldKeyExtractor("email", service.NormalizeEmail),
	))
}

func (r *Router) registerSign() {
	h := &SignHandler{Auth: r.AuthService, Cookies: r.cfg.Cookies}
	limits := r.cfg.Limits

	r.Mux.Handle("POST "+r.path("/sign/signup"),
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			r.byIP(limits.Strict),
		),
	)

	// One address may try a handful of passwords per account, and spraying
	// many accounts still runs into the per-address ceiling.
	r.Mux.Handle("POST "+r.path("/sign/login"),
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.byIP(limits.Moderate),
			r.byAccount(limits.Strict),
		),
	)

	r.Mux.Handle("POST "+r.path("/sign/refresh"),
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.byIP(limits.Moderate),
		),
	)
	r.Mux.Handle("POST "+r.path("/sign/logout"),
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.byIP(limits.Moderate),
		),
	)
}

func (r *Router) registerUser() {
	h := &MeHandler{Auth: r.AuthService}

	r.Mux.Handle("GET "+r.path("/me"),
		httpx.Chain(h,
			httpx.RequireAuthenticated(),
			r.byUser(r.cfg.Limits.Lenient),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{Auth: r.AuthService}
	limits := r.cfg.Limits

	r.Mux.Handle("GET "+r.path("/session"),
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RequireAuthenticated(),
			r.byUser(limits.Lenient),
		),
	)
	r.Mux.Handle("POST "+r.path("/session/extend"),
		httpx.Chain(http.HandlerFunc(h.HandleExtend),
			httpx.RequireAuthenticated(),
			r.byUser(limits.Moderate),
		),
	)

	// Administrative revocation
	r.Mux.Handle("DELETE "+r.path("/sessions/{email}"),
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.RequireAnyAuthority(domain.RoleAdmin),
			r.byUser(limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(),
			r.byIP(r.cfg.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.db, r.sessions, r.key),
			r.byIP(r.cfg.Limits.Lenient),
		),
	)
}
