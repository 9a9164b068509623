package httpx

import (
	"net/http"
	"strings"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	RefreshTokenHeader = "Refresh-Token"

	bearerPrefix = "Bearer "
)

// ResolveAccessToken finds the request's access token. The Authorization
// header wins over the accessToken cookie so API clients and browsers can
// share endpoints.
func ResolveAccessToken(r *http.Request) (string, bool) {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, bearerPrefix) {
		if tok := strings.TrimSpace(strings.TrimPrefix(authz, bearerPrefix)); tok != "" {
			return tok, true
		}
	}
	return cookieValue(r, AccessTokenCookie)
}

// ResolveRefreshToken finds the refresh token, cookie first then the
// Refresh-Token header.
func ResolveRefreshToken(r *http.Request) (string, bool) {
	if tok, ok := cookieValue(r, RefreshTokenCookie); ok {
		return tok, true
	}
	if tok := strings.TrimSpace(r.Header.Get(RefreshTokenHeader)); tok != "" {
		return tok, true
	}
	return "", false
}

func cookieValue(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
