package httpx

import (
	"net/http"
	"strings"
)

// RequireAuthenticated rejects requests the authentication filter could not
// attach a Principal to.
func RequireAuthenticated() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				writeBearerError(w, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAuthority the caller must be authenticated and hold at least one
// of the provided authorities.
func RequireAnyAuthority(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeBearerError(w, "authentication required")
				return
			}

			for _, a := range required {
				if p.HasAuthority(a) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeInsufficientAuthority(w, required...)
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"code":    "A004",
		"error":   "unauthorized",
		"message": desc,
	})
}

func writeInsufficientAuthority(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"code":    "C005",
		"error":   "access_denied",
		"message": "access denied",
	})
}
