package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestParseRateLimit(t *testing.T) {
	t.Run("requests and window", func(t *testing.T) {
		cfg, err := httpx.ParseRateLimit(" 5/1m ")
		require.NoError(t, err)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}, cfg)
	})

	t.Run("explicit burst", func(t *testing.T) {
		cfg, err := httpx.ParseRateLimit("20/30s+40")
		require.NoError(t, err)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 20, Window: 30 * time.Second, Burst: 40}, cfg)
	})

	for _, bad := range []string{"", "5", "0/1m", "x/1m", "5/soon", "5/0s", "5/1m+0", "5/1m+x"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := httpx.ParseRateLimit(bad)
			require.Error(t, err)
		})
	}
}

func TestRateLimitOrDefault(t *testing.T) {
	require.Equal(t, httpx.StrictLimit, httpx.RateLimitConfig{}.OrDefault(httpx.StrictLimit))

	custom := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Second, Burst: 1}
	require.Equal(t, custom, custom.OrDefault(httpx.StrictLimit))
}

func TestRateLimit(t *testing.T) {
	byPeer := httpx.NewClientIP(nil).Of

	t.Run("blocks requests over limit", func(t *testing.T) {
		limited := httpx.RateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: 3,
			Window:            time.Minute,
			Burst:             3,
		}, byPeer)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "20", rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), `"code":"C006"`)
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

		// Another client still gets through.
		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("192.168.1.2:12345"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejections do not spend tokens", func(t *testing.T) {
		limited := httpx.RateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: 60,
			Window:            time.Minute,
			Burst:             1,
		}, byPeer)(okHandler)

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("10.0.0.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)

		for range 5 {
			rec = httptest.NewRecorder()
			limited.ServeHTTP(rec, requestFrom("10.0.0.1:1"))
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
			require.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		limited := httpx.RateLimit(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		}, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestSubjectKeyExtractor(t *testing.T) {
	byPeer := httpx.NewClientIP(nil).Of

	t.Run("anonymous", func(t *testing.T) {
		require.Empty(t, httpx.SubjectKeyExtractor(requestFrom("10.0.0.1:1")))

		key := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, byPeer)(requestFrom("10.0.0.1:1"))
		require.Equal(t, "10.0.0.1", key)
	})

	t.Run("composite with principal", func(t *testing.T) {
		req := requestFrom("10.0.0.1:1")
		req = req.WithContext(httpx.ContextWithPrincipal(req.Context(), httpx.Principal{Subject: "a@x.com"}))

		key := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, byPeer)(req)
		require.Equal(t, "a@x.com:10.0.0.1", key)
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extract := httpx.JSONFieldKeyExtractor("email", strings.ToLower)

	post := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	t.Run("reads and normalizes the field", func(t *testing.T) {
		body := `{"email":"Alice@X.com","password":"pw"}`
		req := post(body)

		require.Equal(t, "alice@x.com", extract(req))

		replayed, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(replayed))
	})

	t.Run("replay keeps decode working", func(t *testing.T) {
		req := post(`{"email":"a@x.com"}`)
		req.Header.Set("Content-Type", "application/json")
		require.Equal(t, "a@x.com", extract(req))

		var got struct {
			Email string `json:"email" validate:"required,email"`
		}
		require.NoError(t, httpx.DecodeJSON(req, &got))
		require.Equal(t, "a@x.com", got.Email)
	})

	t.Run("unusable bodies yield no key", func(t *testing.T) {
		for _, body := range []string{``, `not json`, `[]`, `{"password":"pw"}`, `{"email":42}`} {
			req := post(body)
			require.Empty(t, extract(req), body)

			replayed, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.Equal(t, body, string(replayed))
		}
	})

	t.Run("no body", func(t *testing.T) {
		require.Empty(t, extract(httptest.NewRequest(http.MethodPost, "/", nil)))
	})
}
