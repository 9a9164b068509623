package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSetTokenCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.SetTokenCookies(rec, httpx.CookieConfig{Secure: true}, "acc", 15*time.Minute, "ref", 7*24*time.Hour)

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 2)

	access := cookies[httpx.AccessTokenCookie]
	require.NotNil(t, access)
	require.Equal(t, "acc", access.Value)
	require.Equal(t, 900, access.MaxAge)
	require.Equal(t, "/", access.Path)
	require.True(t, access.HttpOnly)
	require.True(t, access.Secure)
	require.Equal(t, http.SameSiteLaxMode, access.SameSite)

	refresh := cookies[httpx.RefreshTokenCookie]
	require.NotNil(t, refresh)
	require.Equal(t, "ref", refresh.Value)
	require.Equal(t, 604800, refresh.MaxAge)

	t.Run("sub-second ttl still persists", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.SetTokenCookies(rec, httpx.CookieConfig{}, "a", time.Millisecond, "r", time.Millisecond)
		for _, c := range rec.Result().Cookies() {
			require.Equal(t, 1, c.MaxAge)
			require.False(t, c.Secure)
		}
	})
}

func TestClearTokenCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.ClearTokenCookies(rec, httpx.CookieConfig{})

	headers := rec.Header().Values("Set-Cookie")
	require.Len(t, headers, 2)
	for _, h := range headers {
		require.Contains(t, h, "Max-Age=0")
		require.Contains(t, h, "HttpOnly")
		require.Contains(t, h, "Path=/")
	}
	require.True(t, strings.HasPrefix(headers[0], httpx.AccessTokenCookie+"=;"))
	require.True(t, strings.HasPrefix(headers[1], httpx.RefreshTokenCookie+"=;"))
}

func TestRequireAuthenticated(t *testing.T) {
	h := httpx.RequireAuthenticated()(okHandler)

	t.Run("no principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		require.Contains(t, rec.Body.String(), `"code":"A004"`)
	})

	t.Run("principal present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req = req.WithContext(httpx.ContextWithPrincipal(req.Context(), httpx.Principal{Subject: "a@x.com"}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAnyAuthority(t *testing.T) {
	h := httpx.RequireAnyAuthority("ROLE_ADMIN")(okHandler)

	withRoles := func(roles ...string) *http.Request {
		req := httptest.NewRequest(http.MethodDelete, "/sessions/a@x.com", nil)
		ctx := httpx.ContextWithPrincipal(context.Background(), httpx.Principal{Subject: "a@x.com", Authorities: roles})
		return req.WithContext(ctx)
	}

	cases := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"anonymous", httptest.NewRequest(http.MethodDelete, "/", nil), http.StatusUnauthorized},
		{"user", withRoles("ROLE_USER"), http.StatusForbidden},
		{"admin", withRoles("ROLE_USER", "ROLE_ADMIN"), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tc.req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPrincipalContextIsolation(t *testing.T) {
	roles := []string{"ROLE_USER"}
	ctx := httpx.ContextWithPrincipal(context.Background(), httpx.Principal{Subject: "a", Authorities: roles})
	roles[0] = "ROLE_ADMIN"

	p, ok := httpx.PrincipalFromContext(ctx)
	require.True(t, ok)
	require.False(t, p.HasAuthority("ROLE_ADMIN"))
	require.True(t, p.HasAuthority("ROLE_USER"))
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	decode := func(contentType, payload string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		var b body
		return httpx.DecodeJSON(req, &b)
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, decode("application/json", `{"email":"a@x.com","password":"pw"}`))
	})

	t.Run("wrong content type", func(t *testing.T) {
		require.Error(t, decode("text/plain", `{}`))
	})

	t.Run("unknown field", func(t *testing.T) {
		require.Error(t, decode("application/json", `{"email":"a@x.com","password":"pw","admin":true}`))
	})

	t.Run("validation names json field", func(t *testing.T) {
		err := decode("application/json", `{"email":"nope","password":"pw"}`)
		require.Error(t, err)
		require.Contains(t, err.Error(), `"email"`)
	})

	t.Run("missing required", func(t *testing.T) {
		err := decode("", `{"email":"a@x.com"}`)
		require.Error(t, err)
		require.Contains(t, err.Error(), `"password"`)
	})
}

func TestPathAllowList(t *testing.T) {
	l := httpx.NewPathAllowList([]string{" /api/v1/demo/auth/sign/ ", "", "/swagger"})

	require.True(t, l.Match("/api/v1/demo/auth/sign/login"))
	require.False(t, l.Match("/api/v1/demo/auth/sign"))
	require.True(t, l.Match("/swagger"))
	require.True(t, l.Match("/swagger/index.html"))
	require.False(t, l.Match("/swaggerx"))
	require.False(t, l.Match("/"))
}
