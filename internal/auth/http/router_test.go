package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	authhttp "github.com/aussiebroadwan/sessionauth/internal/auth/http"
	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/session"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef-test"
	base       = "/api/v1/demo/auth"
)

type server struct {
	handler http.Handler
	store   *sqlite.Store
	mr      *miniredis.Miniredis
	issuer  *jwtx.Issuer
}

func newServer(t *testing.T, accessTTL, refreshTTL time.Duration) *server {
	t.Helper()
	return newServerWith(t, authhttp.RouterConfig{}, accessTTL, refreshTTL)
}

func newServerWith(t *testing.T, cfg authhttp.RouterConfig, accessTTL, refreshTTL time.Duration) *server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := session.NewStore(rdb, session.Options{})

	key, err := jwtx.NewHMACKey([]byte(testSecret))
	require.NoError(t, err)
	signer, err := jwtx.NewSignerHS256(key)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(key)
	issuer := jwtx.NewIssuer(signer, accessTTL, refreshTTL)

	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := authhttp.NewRouter(cfg, verifier, key, st, sessions, m, logger)
	r.AuthService = &service.AuthService{
		Users:    &service.UserService{Store: st},
		Issuer:   issuer,
		Verifier: verifier,
		Sessions: sessions,
		Metrics:  m,
	}
	r.ApplyRoutes()

	return &server{handler: r, store: st, mr: mr, issuer: issuer}
}

type reqOpt func(*http.Request)

func bearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func cookie(name, value string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func header(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func remoteAddr(addr string) reqOpt {
	return func(r *http.Request) { r.RemoteAddr = addr }
}

func (s *server) do(method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) signupAndLogin(t *testing.T, email, password string) authsdk.TokenResponse {
	t.Helper()

	rec := s.do(http.MethodPost, base+"/sign/signup", authsdk.SignupRequest{
		Email: email, Password: password, Name: "Alice", BirthDate: "1990-01-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, base+"/sign/login", authsdk.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decode[authsdk.TokenResponse](t, rec)
}

// staleRefreshToken mints a refresh token that expired a while ago.
func (s *server) staleRefreshToken(t *testing.T, subject string) string {
	t.Helper()
	past := s.issuer.WithClock(func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) })
	tok, err := past.IssueRefreshToken(subject)
	require.NoError(t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func requireAPIError(t *testing.T, rec *httptest.ResponseRecorder, want *authsdk.APIError) {
	t.Helper()
	require.Equal(t, want.StatusCode, rec.Code, rec.Body.String())
	got := decode[authsdk.APIError](t, rec)
	require.Equal(t, want.Code, got.Code)
	require.Equal(t, want.Err, got.Err)
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSignup(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	path := base + "/sign/signup"

	t.Run("created", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, authsdk.SignupRequest{Email: "a@x.com", Password: "secret", Name: "Alice"})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "signup completed", decode[authsdk.MessageResponse](t, rec).Message)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, authsdk.SignupRequest{Email: "A@X.COM", Password: "other"})
		requireAPIError(t, rec, authsdk.ErrDuplicateEmail)
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, authsdk.SignupRequest{Email: "nope", Password: "pw"})
		requireAPIError(t, rec, authsdk.ErrInvalidInput)
	})

	t.Run("bad birth date", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, authsdk.SignupRequest{Email: "b@x.com", Password: "pw", BirthDate: "02/01/1990"})
		requireAPIError(t, rec, authsdk.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	tokens := s.signupAndLogin(t, "a@x.com", "secret")

	t.Run("returns pair and cookies", func(t *testing.T) {
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
		require.Equal(t, "Bearer", tokens.TokenType)
		require.EqualValues(t, 900, tokens.ExpiresIn)
		require.EqualValues(t, 604800, tokens.RefreshExpiresIn)
	})

	t.Run("records session", func(t *testing.T) {
		require.True(t, s.mr.Exists(session.KeyPrefix+"a@x.com"))
		require.Equal(t, tokens.RefreshToken, s.mr.HGet(session.KeyPrefix+"a@x.com", "refreshToken"))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := s.do(http.MethodPost, base+"/sign/login", authsdk.LoginRequest{Email: "a@x.com", Password: "nope"})
		requireAPIError(t, rec, authsdk.ErrInvalidCredentials)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		rec := s.do(http.MethodPost, base+"/sign/login", authsdk.LoginRequest{Email: "ghost@x.com", Password: "nope"})
		requireAPIError(t, rec, authsdk.ErrInvalidCredentials)
	})
}

func TestLoginCookies(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)

	rec := s.do(http.MethodPost, base+"/sign/signup", authsdk.SignupRequest{Email: "a@x.com", Password: "secret"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, base+"/sign/login", authsdk.LoginRequest{Email: "a@x.com", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	cookies := cookiesByName(rec)
	require.Equal(t, 900, cookies[httpx.AccessTokenCookie].MaxAge)
	require.Equal(t, 604800, cookies[httpx.RefreshTokenCookie].MaxAge)
	require.True(t, cookies[httpx.AccessTokenCookie].HttpOnly)
}

func TestLoginRateLimited(t *testing.T) {
	s := newServer(t, time.Minute, time.Hour)
	path := base + "/sign/login"

	attempt := func(email string, opts ...reqOpt) *httptest.ResponseRecorder {
		return s.do(http.MethodPost, path, authsdk.LoginRequest{Email: email, Password: "pw"}, opts...)
	}

	for range httpx.StrictLimit.Burst {
		requireAPIError(t, attempt("a@x.com"), authsdk.ErrInvalidCredentials)
	}

	t.Run("same account is blocked", func(t *testing.T) {
		requireAPIError(t, attempt("a@x.com"), authsdk.ErrRateLimited)
	})

	t.Run("email is normalized before keying", func(t *testing.T) {
		requireAPIError(t, attempt("  A@X.com "), authsdk.ErrRateLimited)
	})

	t.Run("forwarded headers from an untrusted peer are ignored", func(t *testing.T) {
		rec := attempt("a@x.com", header("X-Forwarded-For", "198.51.100.77"), header("X-Real-IP", "198.51.100.78"))
		requireAPIError(t, rec, authsdk.ErrRateLimited)
	})

	t.Run("other accounts from the same address still reach the handler", func(t *testing.T) {
		requireAPIError(t, attempt("b@x.com"), authsdk.ErrInvalidCredentials)
	})

	t.Run("same account from another address", func(t *testing.T) {
		requireAPIError(t, attempt("a@x.com", remoteAddr("203.0.113.9:4000")), authsdk.ErrInvalidCredentials)
	})
}

func TestLoginRateLimitBehindProxy(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies([]string{"192.0.2.0/24"})
	require.NoError(t, err)
	s := newServerWith(t, authhttp.RouterConfig{TrustedProxies: proxies}, time.Minute, time.Hour)

	attempt := func(client string) *httptest.ResponseRecorder {
		return s.do(http.MethodPost, base+"/sign/login",
			authsdk.LoginRequest{Email: "a@x.com", Password: "pw"},
			header("X-Forwarded-For", client))
	}

	for range httpx.StrictLimit.Burst {
		requireAPIError(t, attempt("198.51.100.1"), authsdk.ErrInvalidCredentials)
	}
	requireAPIError(t, attempt("198.51.100.1"), authsdk.ErrRateLimited)

	// A different client behind the same proxy has its own budget.
	requireAPIError(t, attempt("198.51.100.2"), authsdk.ErrInvalidCredentials)
}

func TestPerAddressLoginCeiling(t *testing.T) {
	s := newServerWith(t, authhttp.RouterConfig{Limits: authhttp.RateLimits{
		Moderate: httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3},
	}}, time.Minute, time.Hour)

	var rec *httptest.ResponseRecorder
	for i := range 4 {
		rec = s.do(http.MethodPost, base+"/sign/login",
			authsdk.LoginRequest{Email: fmt.Sprintf("user%d@x.com", i), Password: "pw"})
	}
	requireAPIError(t, rec, authsdk.ErrRateLimited)
}

func TestRefresh(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	tokens := s.signupAndLogin(t, "a@x.com", "secret")
	path := base + "/sign/refresh"

	t.Run("from cookie", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, nil, cookie(httpx.RefreshTokenCookie, tokens.RefreshToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		next := decode[authsdk.TokenResponse](t, rec)
		require.NotEqual(t, tokens.AccessToken, next.AccessToken)
		require.NotEqual(t, tokens.RefreshToken, next.RefreshToken)
		require.Equal(t, next.RefreshToken, cookiesByName(rec)[httpx.RefreshTokenCookie].Value)
		require.Equal(t, next.AccessToken, s.mr.HGet(session.KeyPrefix+"a@x.com", "accessToken"))
	})

	t.Run("from header", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, nil, header(httpx.RefreshTokenHeader, tokens.RefreshToken))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, nil)
		requireAPIError(t, rec, authsdk.ErrInvalidInput)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, nil, header(httpx.RefreshTokenHeader, "not-a-jwt"))
		requireAPIError(t, rec, authsdk.ErrInvalidToken)
	})

	t.Run("account deleted", func(t *testing.T) {
		me := s.do(http.MethodGet, base+"/me", nil, bearer(tokens.AccessToken))
		require.Equal(t, http.StatusOK, me.Code)
		userID := decode[authsdk.UserInfoResponse](t, me).UserID
		require.NoError(t, s.store.Users().DeleteUser(context.Background(), userID))

		rec := s.do(http.MethodPost, path, nil, cookie(httpx.RefreshTokenCookie, tokens.RefreshToken))
		requireAPIError(t, rec, authsdk.ErrEntityNotFound)
	})
}

func TestRefreshExpired(t *testing.T) {
	s := newServer(t, time.Hour, 24*time.Hour)
	s.signupAndLogin(t, "a@x.com", "secret")

	rec := s.do(http.MethodPost, base+"/sign/refresh", nil, cookie(httpx.RefreshTokenCookie, s.staleRefreshToken(t, "a@x.com")))
	requireAPIError(t, rec, authsdk.ErrInvalidToken)
	require.Contains(t, rec.Body.String(), "expired")
}

func TestLogout(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	tokens := s.signupAndLogin(t, "a@x.com", "secret")
	key := session.KeyPrefix + "a@x.com"
	path := base + "/sign/logout"

	t.Run("bearer token identifies caller", func(t *testing.T) {
		require.True(t, s.mr.Exists(key))

		rec := s.do(http.MethodPost, path, nil, bearer(tokens.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, s.mr.Exists(key))

		headers := rec.Header().Values("Set-Cookie")
		require.Len(t, headers, 2)
		for _, h := range headers {
			require.Contains(t, h, "Max-Age=0")
		}
	})

	t.Run("without tokens still succeeds", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "logged out", decode[authsdk.MessageResponse](t, rec).Message)
	})

	t.Run("garbage token still succeeds", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, nil, bearer("garbage"))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogoutExpiredTokens(t *testing.T) {
	s := newServer(t, time.Minute, time.Hour)
	s.signupAndLogin(t, "a@x.com", "secret")
	require.True(t, s.mr.Exists(session.KeyPrefix+"a@x.com"))

	rec := s.do(http.MethodPost, base+"/sign/logout", nil, cookie(httpx.RefreshTokenCookie, s.staleRefreshToken(t, "a@x.com")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, s.mr.Exists(session.KeyPrefix+"a@x.com"))
}

func TestMe(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	tokens := s.signupAndLogin(t, "a@x.com", "secret")
	path := base + "/me"

	t.Run("anonymous", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, nil)
		requireAPIError(t, rec, authsdk.ErrUnauthorized)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, nil, bearer("garbage"))
		requireAPIError(t, rec, authsdk.ErrUnauthorized)
	})

	t.Run("bearer", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, nil, bearer(tokens.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)

		me := decode[authsdk.UserInfoResponse](t, rec)
		require.NotEmpty(t, me.UserID)
		require.Equal(t, "Alice", me.UserName)
		require.Equal(t, "a@x.com", me.Email)
		require.Equal(t, "1990-01-02", me.BirthDate)
	})

	t.Run("cookie", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, nil, cookie(httpx.AccessTokenCookie, tokens.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request id echoed", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, nil, bearer(tokens.AccessToken), header("X-Request-ID", "trace-123"))
		require.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestSessionEndpoints(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	tokens := s.signupAndLogin(t, "a@x.com", "secret")
	auth := bearer(tokens.AccessToken)

	t.Run("get", func(t *testing.T) {
		rec := s.do(http.MethodGet, base+"/session", nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[authsdk.SessionResponse](t, rec)
		require.Equal(t, "a@x.com", got.Email)
		require.EqualValues(t, 24*60*60, got.ExpiresIn)

		_, err := time.Parse(time.RFC3339, got.LoginTime)
		require.NoError(t, err)
	})

	t.Run("extend", func(t *testing.T) {
		rec := s.do(http.MethodPost, base+"/session/extend", authsdk.ExtendSessionRequest{Hours: 48}, auth)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.EqualValues(t, 48*60*60, decode[authsdk.SessionResponse](t, rec).ExpiresIn)
	})

	t.Run("extend rejects bad hours", func(t *testing.T) {
		rec := s.do(http.MethodPost, base+"/session/extend", authsdk.ExtendSessionRequest{Hours: 0}, auth)
		requireAPIError(t, rec, authsdk.ErrInvalidInput)
	})

	t.Run("anonymous", func(t *testing.T) {
		requireAPIError(t, s.do(http.MethodGet, base+"/session", nil), authsdk.ErrUnauthorized)
	})

	t.Run("missing record", func(t *testing.T) {
		s.mr.Del(session.KeyPrefix + "a@x.com")

		requireAPIError(t, s.do(http.MethodGet, base+"/session", nil, auth), authsdk.ErrEntityNotFound)
		requireAPIError(t,
			s.do(http.MethodPost, base+"/session/extend", authsdk.ExtendSessionRequest{Hours: 1}, auth),
			authsdk.ErrEntityNotFound,
		)
	})
}

func TestRevokeSession(t *testing.T) {
	s := newServer(t, 15*time.Minute, 7*24*time.Hour)
	tokens := s.signupAndLogin(t, "a@x.com", "secret")
	path := base + "/sessions/a@x.com"

	admin, err := s.issuer.IssueAccessToken("root@x.com", "u-root", []string{"ROLE_USER", "ROLE_ADMIN"})
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		requireAPIError(t, s.do(http.MethodDelete, path, nil), authsdk.ErrUnauthorized)
	})

	t.Run("plain user", func(t *testing.T) {
		requireAPIError(t, s.do(http.MethodDelete, path, nil, bearer(tokens.AccessToken)), authsdk.ErrAccessDenied)
		require.True(t, s.mr.Exists(session.KeyPrefix+"a@x.com"))
	})

	t.Run("admin", func(t *testing.T) {
		rec := s.do(http.MethodDelete, path, nil, bearer(admin))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.False(t, s.mr.Exists(session.KeyPrefix+"a@x.com"))
	})

	t.Run("already gone", func(t *testing.T) {
		requireAPIError(t, s.do(http.MethodDelete, path, nil, bearer(admin)), authsdk.ErrEntityNotFound)
	})

	// Revocation is advisory: the access token keeps working.
	t.Run("token still accepted", func(t *testing.T) {
		rec := s.do(http.MethodGet, base+"/me", nil, bearer(tokens.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	s := newServer(t, time.Minute, time.Hour)

	t.Run("livez", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/livez", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", decode[authsdk.HealthResponse](t, rec).Status)
	})

	t.Run("readyz", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/readyz", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "ok", got.Status)
		require.Equal(t, &authsdk.HealthChecks{Database: "ok", Sessions: "ok", Signer: "ok"}, got.Checks)
	})

	t.Run("readyz with redis down", func(t *testing.T) {
		s.mr.SetError("LOADING")
		t.Cleanup(func() { s.mr.SetError("") })

		rec := s.do(http.MethodGet, "/readyz", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "degraded", got.Status)
		require.Equal(t, "ok", got.Checks.Database)
		require.Equal(t, "ok", got.Checks.Signer)
		require.Contains(t, got.Checks.Sessions, "error")
	})

	t.Run("readyz with database down", func(t *testing.T) {
		s := newServer(t, time.Minute, time.Hour)
		require.NoError(t, s.store.Close())

		rec := s.do(http.MethodGet, "/readyz", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		got := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "degraded", got.Status)
		require.Contains(t, got.Checks.Database, "error")
		require.Equal(t, "ok", got.Checks.Sessions)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, time.Minute, time.Hour)

	s.do(http.MethodGet, base+"/me", nil)

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `auth_filter_outcomes_total{outcome="anonymous"} 1`)
}
