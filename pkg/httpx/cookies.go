package httpx

import (
	"net/http"
	"time"
)

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Secure bool
}

// SetTokenCookies writes both token cookies with Max-Age equal to each
// token's TTL.
func SetTokenCookies(w http.ResponseWriter, cfg CookieConfig, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	http.SetCookie(w, tokenCookie(AccessTokenCookie, access, maxAgeSeconds(accessTTL), cfg.Secure))
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, refresh, maxAgeSeconds(refreshTTL), cfg.Secure))
}

// ClearTokenCookies expires both token cookies (Max-Age=0).
func ClearTokenCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, tokenCookie(AccessTokenCookie, "", -1, cfg.Secure))
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, "", -1, cfg.Secure))
}

// tokenCookie builds an HttpOnly, SameSite=Lax cookie on "/". net/http
// renders a negative MaxAge as "Max-Age=0".
func tokenCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func maxAgeSeconds(ttl time.Duration) int {
	// A zero MaxAge would turn the cookie into a session cookie.
	return max(int(ttl/time.Second), 1)
}
